package services

import (
	"fmt"
	"strings"

	"sabhahub/logging"
	"sabhahub/models"
	"sabhahub/storage"
)

// OthersBucket collects time from sessions whose party has no allocation on
// the bill, including sessions with no party at all.
const OthersBucket = "Others"

// Aggregator derives consumed-vs-allotted time from the activity log. The
// log is ground truth; nothing here is persisted.
type Aggregator struct {
	bills    storage.BillStorage
	activity storage.ActivityStorage
	// warnUnmatched logs unmatched-but-nonempty parties before folding them
	// into Others, for operators chasing data entry errors.
	warnUnmatched bool
}

func NewAggregator(bills storage.BillStorage, activity storage.ActivityStorage, warnUnmatched bool) *Aggregator {
	return &Aggregator{bills: bills, activity: activity, warnUnmatched: warnUnmatched}
}

// ConsumedByParty sums duration_seconds per allocated party for a bill,
// optionally restricted to sessions starting on the given date. The result
// keys are the canonical party names from the bill's allocations plus the
// Others bucket, alongside member_<seat> duration keys for member display.
func (a *Aggregator) ConsumedByParty(billID uint, date string) (map[string]int64, error) {
	bill, err := a.bills.Get(billID)
	if err != nil {
		return nil, err
	}

	logs, err := a.activity.ListByBill(&billID, bill.BillName, date)
	if err != nil {
		return nil, err
	}

	canonical := make(map[string]string, len(bill.PartyAllocations))
	for _, alloc := range bill.PartyAllocations {
		canonical[normalizeParty(alloc.Party)] = alloc.Party
	}

	consumed := make(map[string]int64)
	for _, entry := range logs {
		duration := int64(entry.DurationSeconds)
		consumed[a.bucketFor(entry, canonical)] += duration
		if entry.SeatNo > 0 {
			consumed[fmt.Sprintf("member_%d", entry.SeatNo)] += duration
		}
	}
	return consumed, nil
}

// MemberTotals returns cumulative spoken_seconds per seat for a bill.
// spoken_seconds rather than duration_seconds, so post-hoc corrections to a
// logged session are reflected.
func (a *Aggregator) MemberTotals(billID uint, date string) (map[string]int64, error) {
	bill, err := a.bills.Get(billID)
	if err != nil {
		return nil, err
	}

	logs, err := a.activity.ListByBill(&billID, bill.BillName, date)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	for _, entry := range logs {
		if entry.SeatNo <= 0 {
			continue
		}
		totals[fmt.Sprintf("%d", entry.SeatNo)] += int64(entry.SpokenSeconds)
	}
	return totals, nil
}

func (a *Aggregator) bucketFor(entry *models.ActivityLog, canonical map[string]string) string {
	party := normalizeParty(entry.Party)
	if party == "" {
		return OthersBucket
	}
	if name, ok := canonical[party]; ok {
		return name
	}
	if a.warnUnmatched {
		logging.Log.Warnf("Session %d party %q has no allocation on bill %q, attributing to Others",
			entry.ID, entry.Party, entry.BillName)
	}
	return OthersBucket
}

func normalizeParty(party string) string {
	return strings.ToLower(strings.TrimSpace(party))
}
