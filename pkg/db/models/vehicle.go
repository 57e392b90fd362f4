package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Vehicle represents a sellable unit of dealership inventory.
type Vehicle struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Make          string          `gorm:"column:make;not null"`
	Model         string          `gorm:"column:model;not null"`
	Year          int             `gorm:"column:year;not null"`
	Trim          *string         `gorm:"column:trim"`
	Color         *string         `gorm:"column:color"`
	VIN           *string         `gorm:"column:vin;uniqueIndex"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null"`
	ImagePaths    pq.StringArray  `gorm:"column:image_paths;type:text[];not null;default:ARRAY[]::text[]"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// Purchasable reports whether the vehicle can be ordered or booked for a
// test drive right now.
func (v Vehicle) Purchasable() bool {
	return v.IsActive && v.StockQuantity > 0
}
