package dealers

import (
	"context"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for dealerships.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, dealer *models.Dealer) (*models.Dealer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
	FirstActive(ctx context.Context) (*models.Dealer, error)
	ListActive(ctx context.Context) ([]models.Dealer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a dealer repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, dealer *models.Dealer) (*models.Dealer, error) {
	if err := r.db.WithContext(ctx).Create(dealer).Error; err != nil {
		return nil, err
	}
	return dealer, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	var dealer models.Dealer
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&dealer).Error
	if err != nil {
		return nil, err
	}
	return &dealer, nil
}

// FirstActive picks the fallback dealer used when bookings and orders carry no
// dealer preference. Ordering by created_at keeps the assignment stable.
func (r *repository) FirstActive(ctx context.Context) (*models.Dealer, error) {
	var dealer models.Dealer
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND deleted_at IS NULL", true).
		Order("created_at ASC").
		First(&dealer).Error
	if err != nil {
		return nil, err
	}
	return &dealer, nil
}

func (r *repository) ListActive(ctx context.Context) ([]models.Dealer, error) {
	var rows []models.Dealer
	err := r.db.WithContext(ctx).
		Where("is_active = ? AND deleted_at IS NULL", true).
		Order("name ASC").
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
		Model(&models.Dealer{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(updates).Error
}

func (r *repository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Dealer{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{
			"is_active":  false,
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
