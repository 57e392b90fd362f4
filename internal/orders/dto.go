package orders

import (
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Actor identifies who is performing an order operation, as taken from the
// JWT claims on the request.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	DealerID *uuid.UUID
}

// CreateInput carries everything needed to place an order.
type CreateInput struct {
	CustomerID uuid.UUID
	VehicleID  uuid.UUID
	DealerID   uuid.UUID
	Notes      *string
	Actor      Actor
}

// ListFilters describe the inputs supported by the order listings.
type ListFilters struct {
	CustomerID    *uuid.UUID
	DealerID      *uuid.UUID
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
}

// ListInput bundles filters with pagination parameters.
type ListInput struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// OrderDTO is the transport shape of an order.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	VehicleID     uuid.UUID           `json:"vehicle_id"`
	DealerID      uuid.UUID           `json:"dealer_id"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	TotalPrice    decimal.Decimal     `json:"total_price"`
	Notes         *string             `json:"notes,omitempty"`
	ConfirmedAt   *time.Time          `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time          `json:"completed_at,omitempty"`
	RejectedAt    *time.Time          `json:"rejected_at,omitempty"`
	CancelledAt   *time.Time          `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// HistoryDTO is the transport shape of a single order history row.
type HistoryDTO struct {
	ID            uuid.UUID            `json:"id"`
	OrderID       uuid.UUID            `json:"order_id"`
	ActorUserID   *uuid.UUID           `json:"actor_user_id,omitempty"`
	Kind          enums.OrderEventKind `json:"kind"`
	Status        enums.OrderStatus    `json:"status"`
	PaymentStatus enums.PaymentStatus  `json:"payment_status"`
	Notes         *string              `json:"notes,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
}

// OrderDetail combines the order with its full audit trail.
type OrderDetail struct {
	Order   OrderDTO     `json:"order"`
	History []HistoryDTO `json:"history"`
}

// OrderList wraps paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// VehicleSales aggregates units sold per vehicle from completed orders.
type VehicleSales struct {
	VehicleID uuid.UUID       `json:"vehicle_id"`
	Make      string          `json:"make"`
	Model     string          `json:"model"`
	UnitsSold int             `json:"units_sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

func toDTO(order *models.Order) *OrderDTO {
	if order == nil {
		return nil
	}
	return &OrderDTO{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		CustomerID:    order.CustomerID,
		VehicleID:     order.VehicleID,
		DealerID:      order.DealerID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalPrice:    order.TotalPrice,
		Notes:         order.Notes,
		ConfirmedAt:   order.ConfirmedAt,
		CompletedAt:   order.CompletedAt,
		RejectedAt:    order.RejectedAt,
		CancelledAt:   order.CancelledAt,
		CreatedAt:     order.CreatedAt,
		UpdatedAt:     order.UpdatedAt,
	}
}

func toHistoryDTO(entry models.OrderHistory) HistoryDTO {
	return HistoryDTO{
		ID:            entry.ID,
		OrderID:       entry.OrderID,
		ActorUserID:   entry.ActorUserID,
		Kind:          entry.Kind,
		Status:        entry.Status,
		PaymentStatus: entry.PaymentStatus,
		Notes:         entry.Notes,
		CreatedAt:     entry.CreatedAt,
	}
}
