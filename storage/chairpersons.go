package storage

import (
	"sabhahub/logging"
	"sabhahub/models"

	"gorm.io/gorm"
)

type ChairpersonStorage interface {
	GetAll() ([]*models.Chairperson, error)
	Create(c *models.Chairperson) error
	Update(c *models.Chairperson) error
	Delete(id uint) error
}

type GormChairpersonStorage struct {
	DB *gorm.DB
}

func NewGormChairpersonStorage(db *gorm.DB) *GormChairpersonStorage {
	return &GormChairpersonStorage{DB: db}
}

// GetAll returns chairpersons with the presiding officer first.
func (s *GormChairpersonStorage) GetAll() ([]*models.Chairperson, error) {
	var chairs []*models.Chairperson
	err := s.DB.Order(`CASE position
		WHEN 'Chairman' THEN 1
		WHEN 'Deputy Chairman' THEN 2
		ELSE 3 END, name`).Find(&chairs).Error
	if err != nil {
		logging.Log.Errorf("CHAIR: failed to list chairpersons: %v", err)
		return nil, err
	}
	return chairs, nil
}

func (s *GormChairpersonStorage) Create(c *models.Chairperson) error {
	if err := s.DB.Create(c).Error; err != nil {
		logging.Log.Errorf("CHAIR: failed to create chairperson %q: %v", c.Name, err)
		return err
	}
	return nil
}

func (s *GormChairpersonStorage) Update(c *models.Chairperson) error {
	updates := map[string]interface{}{
		"name":     c.Name,
		"position": c.Position,
	}
	if c.Picture != nil {
		updates["picture"] = c.Picture
	}
	res := s.DB.Model(&models.Chairperson{}).Where("id = ?", c.ID).Updates(updates)
	if res.Error != nil {
		logging.Log.Errorf("CHAIR: failed to update chairperson %d: %v", c.ID, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormChairpersonStorage) Delete(id uint) error {
	res := s.DB.Delete(&models.Chairperson{}, id)
	if res.Error != nil {
		logging.Log.Errorf("CHAIR: failed to delete chairperson %d: %v", id, res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
