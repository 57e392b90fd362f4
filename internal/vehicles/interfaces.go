package vehicles

import (
	"context"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for the vehicle catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, vehicle *models.Vehicle) (*models.Vehicle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Vehicle, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Deactivate(ctx context.Context, id uuid.UUID) error
}

// ListFilters describe the inputs supported by the vehicle listing.
type ListFilters struct {
	Make          string
	Model         string
	YearFrom      *int
	YearTo        *int
	OnlyAvailable bool
	IncludeHidden bool
}
