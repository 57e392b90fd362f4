package appointments

import (
	"context"
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for test-drive appointments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, appointment *models.TestDriveAppointment) (*models.TestDriveAppointment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.TestDriveAppointment, error)
	FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.TestDriveAppointment, error)
	CountActiveInWindow(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) (int64, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.TestDriveAppointment, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
}

// ListFilters describe the inputs supported by the appointment listings.
type ListFilters struct {
	CustomerID *uuid.UUID
	DealerID   *uuid.UUID
	VehicleID  *uuid.UUID
	Status     *enums.AppointmentStatus
	DateFrom   *time.Time
	DateTo     *time.Time
}
