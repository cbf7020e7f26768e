package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StoreType string

const (
	StoreTypeRestaurant StoreType = "RESTAURANT"
	StoreTypeGrocery    StoreType = "GROCERY"
	StoreTypePharmacy   StoreType = "PHARMACY"
	StoreTypeRetail     StoreType = "RETAIL"
	StoreTypeOther      StoreType = "OTHER"
)

type Store struct {
	ID                  uuid.UUID          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name                string             `gorm:"not null" json:"name"`
	Description         string             `json:"description"`
	Type                StoreType          `gorm:"not null" json:"type"`
	LocationID          uuid.UUID          `gorm:"type:uuid;not null" json:"locationId"`
	Location            *Location          `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	Phone               string             `json:"phone"`
	Email               string             `json:"email"`
	OperatingHours      string             `json:"operatingHours"`
	IsActive            bool               `gorm:"not null" json:"isActive"`
	IsTemporarilyClosed bool               `gorm:"not null" json:"isTemporarilyClosed"`
	ClosureReason       *string            `json:"closureReason"`
	OwnerID             uuid.UUID          `gorm:"type:uuid;not null;index" json:"ownerId"`
	Owner               *StoreOwnerProfile `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Products            []Product          `gorm:"foreignKey:StoreID" json:"products,omitempty"`
	Staff               []StoreStaff       `gorm:"foreignKey:StoreID" json:"staff,omitempty"`
	BusinessHours       []BusinessHours    `gorm:"foreignKey:StoreID" json:"businessHours,omitempty"`
	CreatedAt           time.Time          `json:"createdAt"`
	UpdatedAt           time.Time          `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (s *Store) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ValidStoreTypes lists the accepted store type values.
var ValidStoreTypes = []StoreType{
	StoreTypeRestaurant,
	StoreTypeGrocery,
	StoreTypePharmacy,
	StoreTypeRetail,
	StoreTypeOther,
}
