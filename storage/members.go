package storage

import (
	"errors"

	"sabhahub/logging"
	"sabhahub/models"

	"gorm.io/gorm"
)

type MemberStorage interface {
	GetBySeat(seatNo int) (*models.Member, error)
	GetAll() ([]*models.Member, error)
	Create(m *models.Member) error
	Update(m *models.Member) error
	Delete(seatNo int) error
	SetVacant(seatNo int) error
	FindSeatByName(name string) (int, error)
}

type GormMemberStorage struct {
	DB *gorm.DB
}

func NewGormMemberStorage(db *gorm.DB) *GormMemberStorage {
	return &GormMemberStorage{DB: db}
}

func (s *GormMemberStorage) GetBySeat(seatNo int) (*models.Member, error) {
	var m models.Member
	err := s.DB.Where("seat_no = ?", seatNo).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.Log.Errorf("MEMBER: failed to fetch seat %d: %v", seatNo, err)
		return nil, err
	}
	return &m, nil
}

func (s *GormMemberStorage) GetAll() ([]*models.Member, error) {
	var members []*models.Member
	if err := s.DB.Order("seat_no").Find(&members).Error; err != nil {
		logging.Log.Errorf("MEMBER: failed to list members: %v", err)
		return nil, err
	}
	return members, nil
}

func (s *GormMemberStorage) Create(m *models.Member) error {
	if err := s.DB.Create(m).Error; err != nil {
		logging.Log.Errorf("MEMBER: failed to create seat %d: %v", m.SeatNo, err)
		return err
	}
	return nil
}

func (s *GormMemberStorage) Update(m *models.Member) error {
	res := s.DB.Model(&models.Member{}).Where("seat_no = ?", m.SeatNo).Updates(map[string]interface{}{
		"name":         m.Name,
		"party":        m.Party,
		"state":        m.State,
		"tenure_start": m.TenureStart,
		"picture":      m.Picture,
	})
	if res.Error != nil {
		logging.Log.Errorf("MEMBER: failed to update seat %d: %v", m.SeatNo, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormMemberStorage) Delete(seatNo int) error {
	res := s.DB.Where("seat_no = ?", seatNo).Delete(&models.Member{})
	if res.Error != nil {
		logging.Log.Errorf("MEMBER: failed to delete seat %d: %v", seatNo, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetVacant clears everything except the seat number itself, creating the
// sentinel row if the seat was never inserted.
func (s *GormMemberStorage) SetVacant(seatNo int) error {
	var count int64
	if err := s.DB.Model(&models.Member{}).Where("seat_no = ?", seatNo).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return s.Create(models.VacantSeat(seatNo))
	}
	vacant := models.VacantSeat(seatNo)
	return s.DB.Model(&models.Member{}).Where("seat_no = ?", seatNo).Updates(map[string]interface{}{
		"name":         vacant.Name,
		"party":        vacant.Party,
		"state":        vacant.State,
		"tenure_start": nil,
		"picture":      nil,
	}).Error
}

func (s *GormMemberStorage) FindSeatByName(name string) (int, error) {
	var m models.Member
	err := s.DB.Where("name = ? OR name LIKE ?", name, "%"+name+"%").First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	return m.SeatNo, nil
}
