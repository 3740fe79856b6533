package services

import (
	"strconv"

	"sabhahub/models"
	"sabhahub/storage"
)

// MemberSnapshot is an immutable copy of a seat's occupant taken at call
// time. The party here is what gets embedded into logged sessions, so the
// historical record is stable against later member edits.
type MemberSnapshot struct {
	SeatNo  int    `json:"seat_no"`
	Name    string `json:"name"`
	Party   string `json:"party"`
	State   string `json:"state"`
	Picture []byte `json:"picture,omitempty"`
	Vacant  bool   `json:"vacant"`
}

type BillSnapshot struct {
	ID          uint                    `json:"id"`
	Name        string                  `json:"bill_name"`
	Allocations models.PartyAllocations `json:"party_allocations"`
	Others      models.OthersTime       `json:"others_time"`
	Status      string                  `json:"status"`
}

// Lookup resolves seats and bills against the directory and registry.
type Lookup struct {
	members storage.MemberStorage
	bills   storage.BillStorage
}

func NewLookup(members storage.MemberStorage, bills storage.BillStorage) *Lookup {
	return &Lookup{members: members, bills: bills}
}

func (l *Lookup) ResolveSeat(seatNo int) (MemberSnapshot, error) {
	m, err := l.members.GetBySeat(seatNo)
	if err != nil {
		return MemberSnapshot{}, err
	}
	return snapshotMember(m), nil
}

// ResolveBill accepts a numeric id or an exact bill name.
func (l *Lookup) ResolveBill(idOrName string) (BillSnapshot, error) {
	var (
		bill *models.Bill
		err  error
	)
	if id, convErr := strconv.Atoi(idOrName); convErr == nil {
		bill, err = l.bills.Get(uint(id))
	} else {
		bill, err = l.bills.GetByName(idOrName)
	}
	if err != nil {
		return BillSnapshot{}, err
	}
	return snapshotBill(bill), nil
}

func (l *Lookup) ResolveBillID(id uint) (BillSnapshot, error) {
	bill, err := l.bills.Get(id)
	if err != nil {
		return BillSnapshot{}, err
	}
	return snapshotBill(bill), nil
}

func snapshotMember(m *models.Member) MemberSnapshot {
	pic := make([]byte, len(m.Picture))
	copy(pic, m.Picture)
	if len(pic) == 0 {
		pic = nil
	}
	return MemberSnapshot{
		SeatNo:  m.SeatNo,
		Name:    m.Name,
		Party:   m.Party,
		State:   m.State,
		Picture: pic,
		Vacant:  m.IsVacant(),
	}
}

func snapshotBill(b *models.Bill) BillSnapshot {
	allocations := make(models.PartyAllocations, len(b.PartyAllocations))
	copy(allocations, b.PartyAllocations)
	return BillSnapshot{
		ID:          b.ID,
		Name:        b.BillName,
		Allocations: allocations,
		Others:      b.OthersTime,
		Status:      b.Status,
	}
}

// VacantSnapshot is the fallback identity for a seat with no directory row.
func VacantSnapshot(seatNo int) MemberSnapshot {
	return snapshotMember(models.VacantSeat(seatNo))
}
