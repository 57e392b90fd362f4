package vehicles

import (
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateVehicleInput holds the validated payload to create a vehicle.
type CreateVehicleInput struct {
	Make          string
	Model         string
	Year          int
	Trim          *string
	Color         *string
	VIN           *string
	Description   *string
	Price         decimal.Decimal
	StockQuantity int
	IsActive      bool
	ImagePaths    []string
}

// UpdateVehicleInput holds optional mutation values for a vehicle.
type UpdateVehicleInput struct {
	Make          *string
	Model         *string
	Year          *int
	Trim          *string
	Color         *string
	VIN           *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	IsActive      *bool
	ImagePaths    *[]string
}

// ListVehiclesInput captures listing filters plus pagination.
type ListVehiclesInput struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// VehicleDTO is the read model returned to controllers.
type VehicleDTO struct {
	ID            uuid.UUID       `json:"id"`
	Make          string          `json:"make"`
	Model         string          `json:"model"`
	Year          int             `json:"year"`
	Trim          *string         `json:"trim,omitempty"`
	Color         *string         `json:"color,omitempty"`
	VIN           *string         `json:"vin,omitempty"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	IsActive      bool            `json:"is_active"`
	ImagePaths    []string        `json:"image_paths"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// VehicleListResult wraps the paginated vehicles plus the next page cursor.
type VehicleListResult struct {
	Vehicles   []VehicleDTO `json:"vehicles"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func toDTO(vehicle *models.Vehicle) *VehicleDTO {
	if vehicle == nil {
		return nil
	}
	return &VehicleDTO{
		ID:            vehicle.ID,
		Make:          vehicle.Make,
		Model:         vehicle.Model,
		Year:          vehicle.Year,
		Trim:          vehicle.Trim,
		Color:         vehicle.Color,
		VIN:           vehicle.VIN,
		Description:   vehicle.Description,
		Price:         vehicle.Price,
		StockQuantity: vehicle.StockQuantity,
		IsActive:      vehicle.IsActive,
		ImagePaths:    vehicle.ImagePaths,
		CreatedAt:     vehicle.CreatedAt,
		UpdatedAt:     vehicle.UpdatedAt,
	}
}
