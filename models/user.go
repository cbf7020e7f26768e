package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleCustomer   = "customer"
	RoleDriver     = "driver"
	RoleStoreOwner = "store_owner"
	RoleAdmin      = "admin"
)

// ValidRoles is the set of roles a user account may hold.
var ValidRoles = map[string]bool{
	RoleCustomer:   true,
	RoleDriver:     true,
	RoleStoreOwner: true,
	RoleAdmin:      true,
}

type User struct {
	ID                uuid.UUID          `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email             string             `gorm:"uniqueIndex;not null" json:"email"`
	Password          string             `gorm:"not null" json:"-"`
	FirstName         string             `json:"firstName"`
	LastName          string             `json:"lastName"`
	Phone             string             `json:"phone"`
	Role              string             `gorm:"default:customer" json:"role"` // customer, driver, store_owner, admin
	IsActive          bool               `gorm:"not null" json:"isActive"`
	IsVerified        bool               `gorm:"not null" json:"isVerified"`
	DriverProfile     *DriverProfile     `gorm:"foreignKey:UserID" json:"driverProfile,omitempty"`
	OwnerProfile      *StoreOwnerProfile `gorm:"foreignKey:UserID" json:"storeOwnerProfile,omitempty"`
	Services          []Service          `gorm:"foreignKey:UserID" json:"services,omitempty"`
	Payments          []Payment          `gorm:"foreignKey:UserID" json:"payments,omitempty"`
	Reviews           []Review           `gorm:"foreignKey:ReviewerID" json:"reviews,omitempty"`
	FavoriteLocations []FavoriteLocation `gorm:"foreignKey:UserID" json:"favoriteLocations,omitempty"`
	Notifications     []Notification     `gorm:"foreignKey:UserID" json:"notifications,omitempty"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// FullName joins first and last name, skipping empty parts.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type StoreOwnerProfile struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	BusinessName string    `gorm:"not null" json:"businessName"`
	TaxID        string    `json:"taxId"`
	Stores       []Store   `gorm:"foreignKey:OwnerID" json:"stores,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (p *StoreOwnerProfile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type DriverProfile struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"userId"`
	LicenseNumber string    `gorm:"not null" json:"licenseNumber"`
	VehicleType   string    `json:"vehicleType"`
	VehiclePlate  string    `json:"vehiclePlate"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (d *DriverProfile) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
