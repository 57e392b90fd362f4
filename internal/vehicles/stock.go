package vehicles

import (
	"context"

	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StockKeeper adjusts vehicle stock counters inside a caller-owned transaction.
type StockKeeper interface {
	Reserve(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error
}

type stockKeeperImpl struct{}

// NewStockKeeper exposes the default stock adjustment implementation.
func NewStockKeeper() StockKeeper {
	return stockKeeperImpl{}
}

// Reserve decrements one unit of stock. The WHERE clause guards against
// oversell under concurrent orders; zero rows affected means the vehicle is
// out of stock or inactive.
func (stockKeeperImpl) Reserve(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock reserve")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE vehicles
		SET stock_quantity = stock_quantity - 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND is_active = ? AND stock_quantity > 0
	`, vehicleID, true)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve vehicle stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeResourceUnavailable, "vehicle is not available")
	}
	return nil
}

// Release returns one unit of stock after a cancellation or rejection.
func (stockKeeperImpl) Release(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock release")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE vehicles
		SET stock_quantity = stock_quantity + 1,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, vehicleID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "release vehicle stock")
	}
	return nil
}
