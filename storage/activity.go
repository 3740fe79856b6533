package storage

import (
	"errors"

	"sabhahub/db"
	"sabhahub/logging"
	"sabhahub/models"

	"gorm.io/gorm"
)

// DefaultListCap bounds unfiltered log listings unless the caller asks for all.
const DefaultListCap = 100

type ActivityFilter struct {
	Date         string // YYYY-MM-DD, matched against DATE(start_time)
	ActivityType string
	All          bool // bypass the default row cap
}

type ActivityStorage interface {
	Append(entry *models.ActivityLog) (uint, error)
	Get(id uint) (*models.ActivityLog, error)
	List(f ActivityFilter) ([]*models.ActivityLog, error)
	// ListByBill fetches Bill Discussion sessions for a bill. When billID is
	// non-nil, legacy rows lacking bill_id are still matched by name; this
	// fallback is a compatibility policy for logs written before bill_id existed.
	ListByBill(billID *uint, billName string, date string) ([]*models.ActivityLog, error)
	UpdateDurations(id uint, durationSeconds, spokenSeconds *int) error
	Delete(id uint) error
	DeleteByBill(billName, date string) (int64, error)
	DeleteAll() error
	// RenameBillReferences repoints every session carrying the bill's id or its
	// old name at the new name, without touching recorded times.
	RenameBillReferences(billID uint, oldName, newName string) (int64, error)
	// MergeByName moves sessions logged under a stale bill name onto the bill.
	MergeByName(oldName string, billID uint, newName string) (int64, error)
	AssignBillIDs(bills []*models.Bill) (int64, error)
	ListMissingSeat() ([]*models.ActivityLog, error)
	SetSeat(id uint, seatNo int) error
}

type GormActivityStorage struct {
	DB *gorm.DB
}

func NewGormActivityStorage(gdb *gorm.DB) *GormActivityStorage {
	return &GormActivityStorage{DB: gdb}
}

// Append persists a finalized session. If the insert fails, the schema
// migration is re-run once and the insert retried, which covers databases
// swapped underneath a running process.
func (s *GormActivityStorage) Append(entry *models.ActivityLog) (uint, error) {
	if err := s.DB.Create(entry).Error; err != nil {
		logging.Log.Warnf("ACTIVITY: append failed, re-running migration and retrying once: %v", err)
		if merr := db.Migrate(s.DB); merr != nil {
			logging.Log.Errorf("ACTIVITY: migration during append retry failed: %v", merr)
			return 0, err
		}
		if err := s.DB.Create(entry).Error; err != nil {
			logging.Log.Errorf("ACTIVITY: append retry failed: %v", err)
			return 0, err
		}
	}
	return entry.ID, nil
}

func (s *GormActivityStorage) Get(id uint) (*models.ActivityLog, error) {
	var entry models.ActivityLog
	err := s.DB.First(&entry, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *GormActivityStorage) List(f ActivityFilter) ([]*models.ActivityLog, error) {
	q := s.DB.Order("start_time DESC")
	if f.Date != "" {
		q = q.Where("DATE(start_time) = ?", f.Date)
	}
	if f.ActivityType != "" {
		q = q.Where("activity_type = ?", f.ActivityType)
	}
	if !f.All {
		q = q.Limit(DefaultListCap)
	}
	var logs []*models.ActivityLog
	if err := q.Find(&logs).Error; err != nil {
		logging.Log.Errorf("ACTIVITY: failed to list logs: %v", err)
		return nil, err
	}
	return logs, nil
}

func (s *GormActivityStorage) ListByBill(billID *uint, billName string, date string) ([]*models.ActivityLog, error) {
	q := s.DB.Where("activity_type = ?", models.ActivityBillDiscussion)
	if billID != nil {
		q = q.Where("bill_id = ? OR (bill_id IS NULL AND bill_name = ?)", *billID, billName)
	} else {
		q = q.Where("bill_name = ?", billName)
	}
	if date != "" {
		q = q.Where("DATE(start_time) = ?", date)
	}
	var logs []*models.ActivityLog
	if err := q.Order("start_time DESC").Find(&logs).Error; err != nil {
		logging.Log.Errorf("ACTIVITY: failed to list logs for bill %q: %v", billName, err)
		return nil, err
	}
	return logs, nil
}

func (s *GormActivityStorage) UpdateDurations(id uint, durationSeconds, spokenSeconds *int) error {
	updates := map[string]interface{}{}
	if durationSeconds != nil {
		updates["duration_seconds"] = *durationSeconds
	}
	if spokenSeconds != nil {
		updates["spoken_seconds"] = *spokenSeconds
	}
	if len(updates) == 0 {
		return nil
	}
	res := s.DB.Model(&models.ActivityLog{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		logging.Log.Errorf("ACTIVITY: failed to update log %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormActivityStorage) Delete(id uint) error {
	res := s.DB.Delete(&models.ActivityLog{}, id)
	if res.Error != nil {
		logging.Log.Errorf("ACTIVITY: failed to delete log %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormActivityStorage) DeleteByBill(billName, date string) (int64, error) {
	q := s.DB.Where("bill_name = ?", billName)
	if date != "" {
		q = q.Where("DATE(start_time) = ?", date)
	}
	res := q.Delete(&models.ActivityLog{})
	if res.Error != nil {
		logging.Log.Errorf("ACTIVITY: failed to delete logs for bill %q: %v", billName, res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s *GormActivityStorage) DeleteAll() error {
	if err := s.DB.Where("1 = 1").Delete(&models.ActivityLog{}).Error; err != nil {
		logging.Log.Errorf("ACTIVITY: failed to clear logs: %v", err)
		return err
	}
	return nil
}

func (s *GormActivityStorage) RenameBillReferences(billID uint, oldName, newName string) (int64, error) {
	res := s.DB.Model(&models.ActivityLog{}).
		Where("bill_id = ? OR bill_name = ?", billID, oldName).
		Updates(map[string]interface{}{"bill_name": newName, "bill_id": billID})
	if res.Error != nil {
		logging.Log.Errorf("ACTIVITY: failed to repoint logs for bill rename %q -> %q: %v", oldName, newName, res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (s *GormActivityStorage) MergeByName(oldName string, billID uint, newName string) (int64, error) {
	res := s.DB.Model(&models.ActivityLog{}).
		Where("bill_name = ?", oldName).
		Updates(map[string]interface{}{"bill_name": newName, "bill_id": billID})
	if res.Error != nil {
		logging.Log.Errorf("ACTIVITY: failed to merge logs from %q: %v", oldName, res.Error)
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// AssignBillIDs backfills bill_id on logs whose bill_name matches a known
// bill. One-shot migration, invoked only through its endpoint.
func (s *GormActivityStorage) AssignBillIDs(bills []*models.Bill) (int64, error) {
	var total int64
	for _, bill := range bills {
		res := s.DB.Model(&models.ActivityLog{}).
			Where("bill_name = ? AND (bill_id IS NULL OR bill_id != ?)", bill.BillName, bill.ID).
			Update("bill_id", bill.ID)
		if res.Error != nil {
			logging.Log.Errorf("ACTIVITY: failed to assign bill_id %d: %v", bill.ID, res.Error)
			return total, res.Error
		}
		total += res.RowsAffected
	}
	return total, nil
}

func (s *GormActivityStorage) ListMissingSeat() ([]*models.ActivityLog, error) {
	var logs []*models.ActivityLog
	if err := s.DB.Where("seat_no IS NULL OR seat_no = 0").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *GormActivityStorage) SetSeat(id uint, seatNo int) error {
	return s.DB.Model(&models.ActivityLog{}).Where("id = ?", id).Update("seat_no", seatNo).Error
}
