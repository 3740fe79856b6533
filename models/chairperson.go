package models

import "time"

type Chairperson struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Position  string    `gorm:"size:100;not null" json:"position"`
	Picture   []byte    `gorm:"type:blob" json:"picture,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func (Chairperson) TableName() string {
	return "chairpersons"
}
