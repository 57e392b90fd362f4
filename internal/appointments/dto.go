package appointments

import (
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	"github.com/google/uuid"
)

// Actor identifies who is performing an appointment operation, as taken from
// the JWT claims on the request.
type Actor struct {
	UserID   uuid.UUID
	Role     enums.UserRole
	DealerID *uuid.UUID
}

// CreateInput carries everything needed to book a test drive.
type CreateInput struct {
	CustomerID    uuid.UUID
	VehicleID     uuid.UUID
	AppointmentAt time.Time
	Notes         *string
	Actor         Actor
}

// ListInput bundles filters with pagination parameters.
type ListInput struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// AppointmentDTO is the transport shape of a test-drive appointment.
type AppointmentDTO struct {
	ID            uuid.UUID               `json:"id"`
	CustomerID    uuid.UUID               `json:"customer_id"`
	VehicleID     uuid.UUID               `json:"vehicle_id"`
	DealerID      uuid.UUID               `json:"dealer_id"`
	AppointmentAt time.Time               `json:"appointment_at"`
	Status        enums.AppointmentStatus `json:"status"`
	Notes         *string                 `json:"notes,omitempty"`
	ConfirmedAt   *time.Time              `json:"confirmed_at,omitempty"`
	CompletedAt   *time.Time              `json:"completed_at,omitempty"`
	CancelledAt   *time.Time              `json:"cancelled_at,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// AppointmentList wraps paginated appointments plus the next page cursor.
type AppointmentList struct {
	Appointments []AppointmentDTO `json:"appointments"`
	NextCursor   string           `json:"next_cursor,omitempty"`
}

// AvailabilityResult reports whether a slot can be booked for a vehicle.
type AvailabilityResult struct {
	VehicleID     uuid.UUID `json:"vehicle_id"`
	AppointmentAt time.Time `json:"appointment_at"`
	Available     bool      `json:"available"`
}

func toDTO(appointment *models.TestDriveAppointment) *AppointmentDTO {
	if appointment == nil {
		return nil
	}
	return &AppointmentDTO{
		ID:            appointment.ID,
		CustomerID:    appointment.CustomerID,
		VehicleID:     appointment.VehicleID,
		DealerID:      appointment.DealerID,
		AppointmentAt: appointment.AppointmentAt,
		Status:        appointment.Status,
		Notes:         appointment.Notes,
		ConfirmedAt:   appointment.ConfirmedAt,
		CompletedAt:   appointment.CompletedAt,
		CancelledAt:   appointment.CancelledAt,
		CreatedAt:     appointment.CreatedAt,
		UpdatedAt:     appointment.UpdatedAt,
	}
}
