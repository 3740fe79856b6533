package services

import (
	"path/filepath"
	"testing"
	"time"

	"sabhahub/db"
	"sabhahub/logging"
	"sabhahub/models"
	"sabhahub/storage"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAggregatorTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logging.Log = logrus.New()

	gdb, err := db.Connect("sqlite", filepath.Join(t.TempDir(), "aggregator_test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func seedBill(t *testing.T, bills storage.BillStorage) *models.Bill {
	t.Helper()
	bill := &models.Bill{
		BillName: "Finance Bill 2026",
		PartyAllocations: models.PartyAllocations{
			{Party: "BJP", Hours: 2},
			{Party: "INC", Hours: 1, Minutes: 30},
		},
		OthersTime: models.OthersTime{Minutes: 45},
	}
	require.NoError(t, bills.Create(bill))
	return bill
}

func billSession(billID *uint, billName, party string, seatNo, duration int, start time.Time) *models.ActivityLog {
	return &models.ActivityLog{
		ActivityType:    models.ActivityBillDiscussion,
		MemberName:      "Member",
		StartTime:       start,
		DurationSeconds: duration,
		SpokenSeconds:   duration,
		BillName:        billName,
		BillID:          billID,
		Party:           party,
		SeatNo:          seatNo,
	}
}

func TestConsumedByPartyNormalizesPartyNames(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	bill := seedBill(t, bills)

	now := time.Now()
	for _, entry := range []*models.ActivityLog{
		billSession(&bill.ID, bill.BillName, "BJP", 12, 300, now),
		billSession(&bill.ID, bill.BillName, " bjp ", 15, 200, now),
		billSession(&bill.ID, bill.BillName, "inc", 34, 150, now),
	} {
		_, err := activity.Append(entry)
		require.NoError(t, err)
	}

	agg := NewAggregator(bills, activity, false)
	consumed, err := agg.ConsumedByParty(bill.ID, "")
	require.NoError(t, err)

	// Variant spellings all land on the canonical allocation name.
	assert.Equal(t, int64(500), consumed["BJP"])
	assert.Equal(t, int64(150), consumed["INC"])
	assert.NotContains(t, consumed, "bjp")
	assert.Equal(t, int64(300), consumed["member_12"])
	assert.Equal(t, int64(200), consumed["member_15"])
}

func TestConsumedByPartyUnmatchedGoesToOthers(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	bill := seedBill(t, bills)

	now := time.Now()
	for _, entry := range []*models.ActivityLog{
		billSession(&bill.ID, bill.BillName, "AAP", 40, 120, now),
		billSession(&bill.ID, bill.BillName, "", 41, 60, now),
		billSession(&bill.ID, bill.BillName, "BJP", 12, 30, now),
	} {
		_, err := activity.Append(entry)
		require.NoError(t, err)
	}

	agg := NewAggregator(bills, activity, false)
	consumed, err := agg.ConsumedByParty(bill.ID, "")
	require.NoError(t, err)

	assert.Equal(t, int64(180), consumed[OthersBucket])
	assert.Equal(t, int64(30), consumed["BJP"])
	assert.NotContains(t, consumed, "AAP")
}

// Every logged second lands in exactly one party bucket, so the bucket sum
// equals the log total regardless of how parties are spelled.
func TestConsumedByPartyConservesTotal(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	bill := seedBill(t, bills)

	now := time.Now()
	durations := []struct {
		party    string
		duration int
	}{
		{"BJP", 100}, {"Inc", 200}, {"AAP", 50}, {"", 25}, {" bjp", 75},
	}
	total := int64(0)
	for i, d := range durations {
		_, err := activity.Append(billSession(&bill.ID, bill.BillName, d.party, 0, d.duration, now.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
		total += int64(d.duration)
	}

	agg := NewAggregator(bills, activity, false)
	consumed, err := agg.ConsumedByParty(bill.ID, "")
	require.NoError(t, err)

	var sum int64
	for _, alloc := range []string{"BJP", "INC", OthersBucket} {
		sum += consumed[alloc]
	}
	assert.Equal(t, total, sum)
}

func TestConsumedByPartyDateFilter(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	bill := seedBill(t, bills)

	day1 := time.Date(2026, 8, 10, 11, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 11, 11, 0, 0, 0, time.UTC)
	_, err := activity.Append(billSession(&bill.ID, bill.BillName, "BJP", 12, 300, day1))
	require.NoError(t, err)
	_, err = activity.Append(billSession(&bill.ID, bill.BillName, "BJP", 12, 120, day2))
	require.NoError(t, err)

	agg := NewAggregator(bills, activity, false)

	consumed, err := agg.ConsumedByParty(bill.ID, "2026-08-10")
	require.NoError(t, err)
	assert.Equal(t, int64(300), consumed["BJP"])

	consumed, err = agg.ConsumedByParty(bill.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(420), consumed["BJP"])
}

// Logs written before bill ids existed carry only a name; they still count.
func TestConsumedByPartyIncludesLegacyNameOnlyLogs(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	bill := seedBill(t, bills)

	now := time.Now()
	_, err := activity.Append(billSession(&bill.ID, bill.BillName, "BJP", 12, 100, now))
	require.NoError(t, err)
	_, err = activity.Append(billSession(nil, bill.BillName, "BJP", 12, 50, now))
	require.NoError(t, err)

	agg := NewAggregator(bills, activity, false)
	consumed, err := agg.ConsumedByParty(bill.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(150), consumed["BJP"])
}

func TestAggregationSurvivesBillRename(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	bill := seedBill(t, bills)

	now := time.Now()
	_, err := activity.Append(billSession(&bill.ID, bill.BillName, "BJP", 12, 240, now))
	require.NoError(t, err)
	_, err = activity.Append(billSession(nil, bill.BillName, "INC", 34, 60, now))
	require.NoError(t, err)

	oldName := bill.BillName
	bill.BillName = "Finance (Amendment) Bill 2026"
	require.NoError(t, bills.Update(bill))
	count, err := activity.RenameBillReferences(bill.ID, oldName, bill.BillName)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	agg := NewAggregator(bills, activity, false)
	consumed, err := agg.ConsumedByParty(bill.ID, "")
	require.NoError(t, err)
	assert.Equal(t, int64(240), consumed["BJP"])
	assert.Equal(t, int64(60), consumed["INC"])
}

func TestMemberTotalsUsesSpokenSeconds(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)
	bill := seedBill(t, bills)

	now := time.Now()
	id, err := activity.Append(billSession(&bill.ID, bill.BillName, "BJP", 12, 300, now))
	require.NoError(t, err)
	_, err = activity.Append(billSession(&bill.ID, bill.BillName, "BJP", 12, 100, now.Add(time.Hour)))
	require.NoError(t, err)
	_, err = activity.Append(billSession(&bill.ID, bill.BillName, "INC", 34, 80, now))
	require.NoError(t, err)
	// Sessions with no seat are excluded from per-member totals.
	_, err = activity.Append(billSession(&bill.ID, bill.BillName, "BJP", 0, 999, now))
	require.NoError(t, err)

	// A post-hoc correction to spoken_seconds must be reflected.
	corrected := 250
	require.NoError(t, activity.UpdateDurations(id, nil, &corrected))

	agg := NewAggregator(bills, activity, false)
	totals, err := agg.MemberTotals(bill.ID, "")
	require.NoError(t, err)

	assert.Equal(t, int64(350), totals["12"])
	assert.Equal(t, int64(80), totals["34"])
	assert.NotContains(t, totals, "0")
}

func TestAggregationUnknownBill(t *testing.T) {
	gdb := newAggregatorTestDB(t)
	bills := storage.NewGormBillStorage(gdb)
	activity := storage.NewGormActivityStorage(gdb)

	agg := NewAggregator(bills, activity, false)
	_, err := agg.ConsumedByParty(999, "")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
