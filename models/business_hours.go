package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BusinessHours struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StoreID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_store_day" json:"storeId"`
	DayOfWeek int       `gorm:"not null;uniqueIndex:idx_store_day" json:"dayOfWeek"` // 0=Sunday, 6=Saturday
	OpenTime  string    `gorm:"not null" json:"openTime"`
	CloseTime string    `gorm:"not null" json:"closeTime"`
	IsClosed  bool      `gorm:"not null" json:"isClosed"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *BusinessHours) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

func (BusinessHours) TableName() string {
	return "business_hours"
}
