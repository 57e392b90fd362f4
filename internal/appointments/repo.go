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

// activeStatuses are the states that block a slot or a customer.
var activeStatuses = []enums.AppointmentStatus{
	enums.AppointmentStatusPending,
	enums.AppointmentStatusConfirmed,
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an appointments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, appointment *models.TestDriveAppointment) (*models.TestDriveAppointment, error) {
	if err := r.db.WithContext(ctx).Create(appointment).Error; err != nil {
		return nil, err
	}
	return appointment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.TestDriveAppointment, error) {
	var appointment models.TestDriveAppointment
	if err := r.db.WithContext(ctx).First(&appointment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *repository) FindActiveByCustomer(ctx context.Context, customerID uuid.UUID) (*models.TestDriveAppointment, error) {
	var appointment models.TestDriveAppointment
	err := r.db.WithContext(ctx).
		Where("customer_id = ? AND status IN ?", customerID, activeStatuses).
		Order("appointment_at ASC").
		First(&appointment).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *repository) CountActiveInWindow(ctx context.Context, vehicleID uuid.UUID, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.TestDriveAppointment{}).
		Where("vehicle_id = ? AND status IN ?", vehicleID, activeStatuses).
		Where("appointment_at BETWEEN ? AND ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.TestDriveAppointment, error) {
	query := r.db.WithContext(ctx).Model(&models.TestDriveAppointment{})

	if filters.CustomerID != nil {
		query = query.Where("customer_id = ?", *filters.CustomerID)
	}
	if filters.DealerID != nil {
		query = query.Where("dealer_id = ?", *filters.DealerID)
	}
	if filters.VehicleID != nil {
		query = query.Where("vehicle_id = ?", *filters.VehicleID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("appointment_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("appointment_at <= ?", *filters.DateTo)
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.TestDriveAppointment
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.TestDriveAppointment{}).
		Where("id = ?", id).
		Updates(updates).Error
}
