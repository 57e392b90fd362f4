package vehicles

import (
	"context"
	"testing"
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupVehiclesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	vehicles := `
CREATE TABLE IF NOT EXISTS vehicles (
  id TEXT PRIMARY KEY,
  make TEXT NOT NULL,
  model TEXT NOT NULL,
  year INTEGER NOT NULL,
  trim TEXT,
  color TEXT,
  vin TEXT,
  description TEXT,
  price NUMERIC NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  image_paths TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(vehicles).Error)
	return db
}

func insertVehicle(t *testing.T, db *gorm.DB, mutate func(*models.Vehicle)) *models.Vehicle {
	t.Helper()
	vehicle := &models.Vehicle{
		ID:            uuid.New(),
		Make:          "Polestar",
		Model:         "2",
		Year:          2025,
		Price:         decimal.NewFromInt(52000),
		StockQuantity: 2,
		IsActive:      true,
		ImagePaths:    []string{},
	}
	if mutate != nil {
		mutate(vehicle)
	}
	require.NoError(t, db.Create(vehicle).Error)
	return vehicle
}

func TestRepositoryCreateAndFind(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &models.Vehicle{
		ID:            uuid.New(),
		Make:          "Kia",
		Model:         "EV9",
		Year:          2026,
		Price:         decimal.NewFromInt(61000),
		StockQuantity: 4,
		IsActive:      true,
		ImagePaths:    []string{},
	})
	require.NoError(t, err)

	found, err := repo.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "EV9", found.Model)
	assert.Equal(t, 4, found.StockQuantity)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryCreatePersistsInactive(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	// false must survive the INSERT despite the column-level active default
	created, err := repo.Create(ctx, &models.Vehicle{
		ID:         uuid.New(),
		Make:       "Lucid",
		Model:      "Air",
		Year:       2026,
		Price:      decimal.NewFromInt(87000),
		IsActive:   false,
		ImagePaths: []string{},
	})
	require.NoError(t, err)

	var active bool
	require.NoError(t, db.Raw("SELECT is_active FROM vehicles WHERE id = ?", created.ID).Scan(&active).Error)
	assert.False(t, active)
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	insertVehicle(t, db, func(v *models.Vehicle) { v.Make = "Kia"; v.Model = "EV9" })
	insertVehicle(t, db, func(v *models.Vehicle) { v.Make = "Kia"; v.Model = "EV6"; v.StockQuantity = 0 })
	insertVehicle(t, db, func(v *models.Vehicle) { v.Make = "Rivian"; v.IsActive = false })

	rows, err := repo.List(ctx, pagination.Params{}, ListFilters{Make: "kia"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, pagination.Params{}, ListFilters{Make: "Kia", OnlyAvailable: true})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "EV9", rows[0].Model)

	// inactive vehicles are hidden unless requested
	rows, err = repo.List(ctx, pagination.Params{}, ListFilters{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = repo.List(ctx, pagination.Params{}, ListFilters{IncludeHidden: true})
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestRepositoryListCursor(t *testing.T) {
	db := setupVehiclesTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 3; i++ {
		created := base.Add(-time.Duration(i) * time.Hour)
		insertVehicle(t, db, func(v *models.Vehicle) {
			v.CreatedAt = created
			v.UpdatedAt = created
		})
	}

	first, err := repo.List(ctx, pagination.Params{Limit: 2}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, first, 3) // limit+1 buffer

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID})
	rest, err := repo.List(ctx, pagination.Params{Limit: 2, Cursor: cursor}, ListFilters{})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.True(t, rest[0].CreatedAt.Before(first[1].CreatedAt))
}

func TestStockKeeperReserveAndRelease(t *testing.T) {
	db := setupVehiclesTestDB(t)
	keeper := NewStockKeeper()
	ctx := context.Background()

	vehicle := insertVehicle(t, db, func(v *models.Vehicle) { v.StockQuantity = 1 })

	require.NoError(t, keeper.Reserve(ctx, db, vehicle.ID))

	var stock int
	require.NoError(t, db.Raw("SELECT stock_quantity FROM vehicles WHERE id = ?", vehicle.ID).Scan(&stock).Error)
	assert.Equal(t, 0, stock)

	// second reserve hits the guard
	err := keeper.Reserve(ctx, db, vehicle.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResourceUnavailable), "expected resource unavailable, got %v", err)

	require.NoError(t, keeper.Release(ctx, db, vehicle.ID))
	require.NoError(t, db.Raw("SELECT stock_quantity FROM vehicles WHERE id = ?", vehicle.ID).Scan(&stock).Error)
	assert.Equal(t, 1, stock)
}

func TestStockKeeperReserveInactive(t *testing.T) {
	db := setupVehiclesTestDB(t)
	keeper := NewStockKeeper()
	ctx := context.Background()

	vehicle := insertVehicle(t, db, func(v *models.Vehicle) { v.IsActive = false })

	err := keeper.Reserve(ctx, db, vehicle.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeResourceUnavailable), "expected resource unavailable, got %v", err)
}
