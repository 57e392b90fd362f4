package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evmotors/dealerhub-backend/pkg/enums"
)

// Order represents a single-vehicle purchase order placed by a customer and
// fulfilled by a dealer.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;type:text;not null;uniqueIndex"`
	CustomerID    uuid.UUID           `gorm:"column:customer_id;type:uuid;not null;index"`
	VehicleID     uuid.UUID           `gorm:"column:vehicle_id;type:uuid;not null;index"`
	DealerID      uuid.UUID           `gorm:"column:dealer_id;type:uuid;not null;index"`
	Status        enums.OrderStatus   `gorm:"column:status;type:text;not null;default:'processing'"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;type:text;not null;default:'unpaid'"`
	TotalPrice    decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	Notes         *string             `gorm:"column:notes"`
	ConfirmedAt   *time.Time          `gorm:"column:confirmed_at"`
	CompletedAt   *time.Time          `gorm:"column:completed_at"`
	RejectedAt    *time.Time          `gorm:"column:rejected_at"`
	CancelledAt   *time.Time          `gorm:"column:cancelled_at"`
	History       []OrderHistory      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
