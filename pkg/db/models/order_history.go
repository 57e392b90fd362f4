package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evmotors/dealerhub-backend/pkg/enums"
)

// OrderHistory records an immutable lifecycle event for an order. Rows are
// append-only; the order's current state is always derivable from the latest
// row.
type OrderHistory struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID       uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	ActorUserID   *uuid.UUID           `gorm:"column:actor_user_id;type:uuid"`
	Kind          enums.OrderEventKind `gorm:"column:kind;type:text;not null"`
	Status        enums.OrderStatus    `gorm:"column:status;type:text;not null"`
	PaymentStatus enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null"`
	Notes         *string              `gorm:"column:notes"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
