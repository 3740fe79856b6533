package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"sabhahub/db"
	"sabhahub/logging"
	"sabhahub/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newStorageTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logging.Log = logrus.New()

	gdb, err := db.Connect("sqlite", filepath.Join(t.TempDir(), "storage_test.db"))
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))
	return gdb
}

func testLog(activityType, billName, party string, seatNo int, start time.Time) *models.ActivityLog {
	return &models.ActivityLog{
		ActivityType:    activityType,
		MemberName:      "Member",
		StartTime:       start,
		DurationSeconds: 60,
		SpokenSeconds:   60,
		BillName:        billName,
		Party:           party,
		SeatNo:          seatNo,
	}
}

func TestAppendAndGet(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	id, err := s.Append(testLog(models.ActivityZeroHour, "", "BJP", 12, time.Now()))
	require.NoError(t, err)
	require.NotZero(t, id)

	entry, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, models.ActivityZeroHour, entry.ActivityType)
	assert.Equal(t, 12, entry.SeatNo)

	_, err = s.Get(9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListCapAndAllFlag(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	base := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < DefaultListCap+5; i++ {
		_, err := s.Append(testLog(models.ActivityMemberSpeaking, "", "BJP", i+1, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	logs, err := s.List(ActivityFilter{})
	require.NoError(t, err)
	assert.Len(t, logs, DefaultListCap)
	// Newest first.
	assert.True(t, logs[0].StartTime.After(logs[1].StartTime))

	logs, err = s.List(ActivityFilter{All: true})
	require.NoError(t, err)
	assert.Len(t, logs, DefaultListCap+5)
}

func TestListFilters(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	day1 := time.Date(2026, 8, 10, 11, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 11, 11, 0, 0, 0, time.UTC)
	_, err := s.Append(testLog(models.ActivityZeroHour, "", "BJP", 1, day1))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "INC", 2, day1))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityZeroHour, "", "BJP", 3, day2))
	require.NoError(t, err)

	logs, err := s.List(ActivityFilter{Date: "2026-08-10"})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = s.List(ActivityFilter{ActivityType: models.ActivityZeroHour})
	require.NoError(t, err)
	assert.Len(t, logs, 2)

	logs, err = s.List(ActivityFilter{Date: "2026-08-10", ActivityType: models.ActivityZeroHour})
	require.NoError(t, err)
	assert.Len(t, logs, 1)
	assert.Equal(t, 1, logs[0].SeatNo)
}

func TestUpdateDurations(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	id, err := s.Append(testLog(models.ActivityMemberSpeaking, "", "BJP", 12, time.Now()))
	require.NoError(t, err)

	spoken := 45
	require.NoError(t, s.UpdateDurations(id, nil, &spoken))

	entry, err := s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 45, entry.SpokenSeconds)
	assert.Equal(t, 60, entry.DurationSeconds)

	duration := 50
	require.NoError(t, s.UpdateDurations(id, &duration, nil))
	entry, err = s.Get(id)
	require.NoError(t, err)
	assert.Equal(t, 50, entry.DurationSeconds)

	assert.ErrorIs(t, s.UpdateDurations(9999, &duration, nil), ErrNotFound)
}

func TestDeleteAndDeleteAll(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	id, err := s.Append(testLog(models.ActivityZeroHour, "", "BJP", 1, time.Now()))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityZeroHour, "", "INC", 2, time.Now()))
	require.NoError(t, err)

	require.NoError(t, s.Delete(id))
	assert.ErrorIs(t, s.Delete(id), ErrNotFound)

	require.NoError(t, s.DeleteAll())
	logs, err := s.List(ActivityFilter{All: true})
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestDeleteByBill(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	day1 := time.Date(2026, 8, 10, 11, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 11, 11, 0, 0, 0, time.UTC)
	_, err := s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "BJP", 1, day1))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "INC", 2, day2))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Water Bill 2026", "BJP", 3, day1))
	require.NoError(t, err)

	count, err := s.DeleteByBill("Finance Bill 2026", "2026-08-10")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = s.DeleteByBill("Finance Bill 2026", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	logs, err := s.List(ActivityFilter{All: true})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "Water Bill 2026", logs[0].BillName)
}

func TestRenameBillReferences(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	billID := uint(7)
	withID := testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "BJP", 1, time.Now())
	withID.BillID = &billID
	_, err := s.Append(withID)
	require.NoError(t, err)
	// Legacy row, name only.
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "INC", 2, time.Now()))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Water Bill 2026", "BJP", 3, time.Now()))
	require.NoError(t, err)

	count, err := s.RenameBillReferences(billID, "Finance Bill 2026", "Finance (Amendment) Bill 2026")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	logs, err := s.ListByBill(&billID, "Finance (Amendment) Bill 2026", "")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	for _, entry := range logs {
		assert.Equal(t, "Finance (Amendment) Bill 2026", entry.BillName)
		require.NotNil(t, entry.BillID)
		assert.Equal(t, billID, *entry.BillID)
	}
}

func TestMergeByName(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	_, err := s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill (old)", "BJP", 1, time.Now()))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill (old)", "INC", 2, time.Now()))
	require.NoError(t, err)

	count, err := s.MergeByName("Finance Bill (old)", 7, "Finance Bill 2026")
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	billID := uint(7)
	logs, err := s.ListByBill(&billID, "Finance Bill 2026", "")
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestAssignBillIDs(t *testing.T) {
	gdb := newStorageTestDB(t)
	s := NewGormActivityStorage(gdb)
	bills := NewGormBillStorage(gdb)

	bill := &models.Bill{BillName: "Finance Bill 2026"}
	require.NoError(t, bills.Create(bill))

	_, err := s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "BJP", 1, time.Now()))
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Unregistered Bill", "BJP", 2, time.Now()))
	require.NoError(t, err)

	count, err := s.AssignBillIDs([]*models.Bill{bill})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Re-running assigns nothing new.
	count, err = s.AssignBillIDs([]*models.Bill{bill})
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestListByBillMatchesIDAndLegacyName(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	billID := uint(3)
	withID := testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "BJP", 1, time.Now())
	withID.BillID = &billID
	_, err := s.Append(withID)
	require.NoError(t, err)
	_, err = s.Append(testLog(models.ActivityBillDiscussion, "Finance Bill 2026", "INC", 2, time.Now()))
	require.NoError(t, err)
	// Zero Hour sessions never show up in bill listings.
	_, err = s.Append(testLog(models.ActivityZeroHour, "Finance Bill 2026", "BJP", 3, time.Now()))
	require.NoError(t, err)

	logs, err := s.ListByBill(&billID, "Finance Bill 2026", "")
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

func TestSeatBackfillHelpers(t *testing.T) {
	s := NewGormActivityStorage(newStorageTestDB(t))

	for i := 0; i < 3; i++ {
		entry := testLog(models.ActivityMemberSpeaking, "", "BJP", 0, time.Now())
		entry.MemberName = fmt.Sprintf("Member %d", i)
		_, err := s.Append(entry)
		require.NoError(t, err)
	}
	_, err := s.Append(testLog(models.ActivityMemberSpeaking, "", "BJP", 42, time.Now()))
	require.NoError(t, err)

	missing, err := s.ListMissingSeat()
	require.NoError(t, err)
	require.Len(t, missing, 3)

	require.NoError(t, s.SetSeat(missing[0].ID, 17))
	missing, err = s.ListMissingSeat()
	require.NoError(t, err)
	assert.Len(t, missing, 2)
}
