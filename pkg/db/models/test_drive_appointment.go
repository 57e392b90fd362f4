package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/evmotors/dealerhub-backend/pkg/enums"
)

// TestDriveAppointment represents a customer's booked test drive slot for a
// vehicle at a dealership.
type TestDriveAppointment struct {
	ID            uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	VehicleID     uuid.UUID               `gorm:"column:vehicle_id;type:uuid;not null;index"`
	DealerID      uuid.UUID               `gorm:"column:dealer_id;type:uuid;not null;index"`
	AppointmentAt time.Time               `gorm:"column:appointment_at;not null;index"`
	Status        enums.AppointmentStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	Notes         *string                 `gorm:"column:notes"`
	ConfirmedAt   *time.Time              `gorm:"column:confirmed_at"`
	CompletedAt   *time.Time              `gorm:"column:completed_at"`
	CancelledAt   *time.Time              `gorm:"column:cancelled_at"`
	CreatedAt     time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
