package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaxiStand struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Capacity    int            `gorm:"not null" json:"capacity"`
	LocationID  uuid.UUID      `gorm:"type:uuid;not null" json:"locationId"`
	Location    *Location      `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	IsActive    bool           `gorm:"not null" json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *TaxiStand) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
