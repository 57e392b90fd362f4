package orders

import (
	"context"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for orders and their history.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateHistory(ctx context.Context, entry *models.OrderHistory) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error)
	ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SalesStats(ctx context.Context, dealerID *uuid.UUID) ([]VehicleSales, error)
}
