package models

import "time"

// VacantName marks a seat with no sitting member. Vacant seats are real rows,
// not absent ones, so callers never deal with a missing record for a valid seat.
const VacantName = "VACANT"

// Member is one chamber seat and whoever currently occupies it.
type Member struct {
	SeatNo      int        `gorm:"column:seat_no;primaryKey" json:"seat_no"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Party       string     `gorm:"size:100" json:"party"`
	State       string     `gorm:"size:100" json:"state"`
	TenureStart *time.Time `gorm:"column:tenure_start" json:"tenure_start,omitempty"`
	Picture     []byte     `gorm:"type:blob" json:"picture,omitempty"`
}

func (Member) TableName() string {
	return "parliament_seats"
}

func (m *Member) IsVacant() bool {
	return m.Name == VacantName
}

// VacantSeat returns the sentinel record for an unoccupied seat.
func VacantSeat(seatNo int) *Member {
	return &Member{
		SeatNo: seatNo,
		Name:   VacantName,
		Party:  "-",
		State:  "-",
	}
}
