package storage

import (
	"errors"

	"sabhahub/logging"
	"sabhahub/models"

	"gorm.io/gorm"
)

type BillStorage interface {
	Get(id uint) (*models.Bill, error)
	GetByName(name string) (*models.Bill, error)
	List(status string) ([]*models.Bill, error)
	Create(b *models.Bill) error
	Update(b *models.Bill) error
	UpdateStatus(id uint, status string) error
	Delete(id uint) error
}

type GormBillStorage struct {
	DB *gorm.DB
}

func NewGormBillStorage(db *gorm.DB) *GormBillStorage {
	return &GormBillStorage{DB: db}
}

func (s *GormBillStorage) Get(id uint) (*models.Bill, error) {
	var b models.Bill
	err := s.DB.First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Log.Errorf("BILL: failed to fetch bill %d: %v", id, err)
		return nil, err
	}
	return &b, nil
}

func (s *GormBillStorage) GetByName(name string) (*models.Bill, error) {
	var b models.Bill
	err := s.DB.Where("bill_name = ?", name).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Log.Errorf("BILL: failed to fetch bill %q: %v", name, err)
		return nil, err
	}
	return &b, nil
}

// List returns bills newest first, optionally restricted to one status.
func (s *GormBillStorage) List(status string) ([]*models.Bill, error) {
	var bills []*models.Bill
	q := s.DB.Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&bills).Error; err != nil {
		logging.Log.Errorf("BILL: failed to list bills: %v", err)
		return nil, err
	}
	return bills, nil
}

func (s *GormBillStorage) Create(b *models.Bill) error {
	if b.Status == "" {
		b.Status = models.BillStatusActive
	}
	if err := s.DB.Create(b).Error; err != nil {
		logging.Log.Errorf("BILL: failed to create bill %q: %v", b.BillName, err)
		return err
	}
	return nil
}

func (s *GormBillStorage) Update(b *models.Bill) error {
	res := s.DB.Model(&models.Bill{}).Where("id = ?", b.ID).Updates(map[string]interface{}{
		"bill_name":         b.BillName,
		"party_allocations": b.PartyAllocations,
		"others_time":       b.OthersTime,
	})
	if res.Error != nil {
		logging.Log.Errorf("BILL: failed to update bill %d: %v", b.ID, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormBillStorage) UpdateStatus(id uint, status string) error {
	res := s.DB.Model(&models.Bill{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		logging.Log.Errorf("BILL: failed to update status of bill %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormBillStorage) Delete(id uint) error {
	res := s.DB.Delete(&models.Bill{}, id)
	if res.Error != nil {
		logging.Log.Errorf("BILL: failed to delete bill %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
