package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ServiceType string

const (
	ServiceTypeRide     ServiceType = "RIDE"
	ServiceTypeDelivery ServiceType = "DELIVERY"
	ServiceTypeCourier  ServiceType = "COURIER"
	ServiceTypeMoving   ServiceType = "MOVING"
)

type ServiceStatus string

const (
	ServiceStatusPending    ServiceStatus = "PENDING"
	ServiceStatusAccepted   ServiceStatus = "ACCEPTED"
	ServiceStatusInProgress ServiceStatus = "IN_PROGRESS"
	ServiceStatusCompleted  ServiceStatus = "COMPLETED"
	ServiceStatusCancelled  ServiceStatus = "CANCELLED"
)

// Service is a single ride or delivery job requested by a user.
type Service struct {
	ID          uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	DriverID    *uuid.UUID    `gorm:"type:uuid;index" json:"driverId,omitempty"`
	ServiceType ServiceType   `gorm:"not null" json:"serviceType"`
	Status      ServiceStatus `gorm:"not null" json:"status"`
	Price       float64       `json:"price"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (s *Service) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
	PaymentMethodWallet PaymentMethod = "WALLET"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"userId"`
	ServiceID *uuid.UUID    `gorm:"type:uuid;index" json:"serviceId,omitempty"`
	Amount    float64       `gorm:"not null" json:"amount"`
	Method    PaymentMethod `gorm:"not null" json:"method"`
	Status    PaymentStatus `gorm:"not null" json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Review rates a completed service. The optional dimensions are only
// filled in for rides.
type Review struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ServiceID         uuid.UUID  `gorm:"type:uuid;not null;index" json:"serviceId"`
	ReviewerID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"reviewerId"`
	DriverID          *uuid.UUID `gorm:"type:uuid;index" json:"driverId,omitempty"`
	Rating            int        `gorm:"not null" json:"rating"`
	PunctualityRating *int       `json:"punctualityRating,omitempty"`
	CleanlinessRating *int       `json:"cleanlinessRating,omitempty"`
	CourtesyRating    *int       `json:"courtesyRating,omitempty"`
	Comment           string     `json:"comment"`
	CreatedAt         time.Time  `json:"createdAt"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"userId"`
	Title     string    `gorm:"not null" json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `gorm:"not null" json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
