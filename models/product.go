package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Product struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	StoreID       uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_store_sku" json:"storeId"`
	Store         *Store         `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `json:"description"`
	Price         float64        `gorm:"not null" json:"price"`
	StockQuantity int            `gorm:"not null" json:"stockQuantity"`
	MinStockLevel int            `gorm:"not null" json:"minStockLevel"`
	Category      string         `gorm:"index" json:"category"`
	SKU           string         `gorm:"uniqueIndex:idx_store_sku" json:"sku"`
	ImageURL      string         `json:"imageUrl"`
	IsAvailable   bool           `gorm:"not null" json:"isAvailable"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsLowStock reports whether the stock has fallen to or below the minimum level.
func (p *Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinStockLevel
}
