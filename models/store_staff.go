package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRole string

const (
	StaffRoleManager   StaffRole = "MANAGER"
	StaffRoleCashier   StaffRole = "CASHIER"
	StaffRoleInventory StaffRole = "INVENTORY"
	StaffRoleDelivery  StaffRole = "DELIVERY"
)

type StoreStaff struct {
	ID        uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StoreID   uuid.UUID  `gorm:"type:uuid;not null;index" json:"storeId"`
	Store     *Store     `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"userId,omitempty"`
	Name      string     `gorm:"not null" json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Role      StaffRole  `gorm:"not null" json:"role"`
	IsActive  bool       `gorm:"not null" json:"isActive"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (s *StoreStaff) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

func (StoreStaff) TableName() string {
	return "store_staff"
}
