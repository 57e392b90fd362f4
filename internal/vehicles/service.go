package vehicles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db"
	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

const minModelYear = 1950

// Service exposes vehicle catalog management operations.
type Service interface {
	ListVehicles(ctx context.Context, input ListVehiclesInput) (*VehicleListResult, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error)
	UpdateVehicle(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error)
	DeactivateVehicle(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a vehicle service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("vehicles repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListVehicles(ctx context.Context, input ListVehiclesInput) (*VehicleListResult, error) {
	rows, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vehicles")
	}

	page := pagination.NewPage(rows, input.Limit, func(v models.Vehicle) pagination.Cursor {
		return pagination.Cursor{CreatedAt: v.CreatedAt, ID: v.ID}
	})

	result := &VehicleListResult{
		Vehicles:   make([]VehicleDTO, 0, len(page.Items)),
		NextCursor: page.NextCursor,
	}
	for i := range page.Items {
		result.Vehicles = append(result.Vehicles, *toDTO(&page.Items[i]))
	}
	return result, nil
}

func (s *service) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	return toDTO(vehicle), nil
}

func (s *service) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		Make:          strings.TrimSpace(input.Make),
		Model:         strings.TrimSpace(input.Model),
		Year:          input.Year,
		Trim:          input.Trim,
		Color:         input.Color,
		VIN:           input.VIN,
		Description:   input.Description,
		Price:         input.Price,
		StockQuantity: input.StockQuantity,
		IsActive:      input.IsActive,
		ImagePaths:    input.ImagePaths,
	}
	if vehicle.ImagePaths == nil {
		vehicle.ImagePaths = []string{}
	}

	created, err := s.repo.Create(ctx, vehicle)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_vehicles_vin") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "vehicle with this VIN already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return toDTO(created), nil
}

func (s *service) UpdateVehicle(ctx context.Context, id uuid.UUID, input UpdateVehicleInput) (*VehicleDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}

	updates, err := buildUpdates(input)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}

	if len(updates) > 0 {
		if err := s.repo.Update(ctx, id, updates); err != nil {
			if db.IsUniqueViolation(err, "idx_vehicles_vin") {
				return nil, pkgerrors.New(pkgerrors.CodeConflict, "vehicle with this VIN already exists")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vehicle")
		}
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload vehicle")
	}
	return toDTO(updated), nil
}

func (s *service) DeactivateVehicle(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	vehicle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if !vehicle.IsActive {
		return nil
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate vehicle")
	}
	return nil
}

func validateCreateInput(input CreateVehicleInput) error {
	if strings.TrimSpace(input.Make) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "make is required")
	}
	if strings.TrimSpace(input.Model) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "model is required")
	}
	if input.Year < minModelYear || input.Year > time.Now().Year()+1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "year is out of range")
	}
	if input.Price.IsNegative() || input.Price.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	return nil
}

func buildUpdates(input UpdateVehicleInput) (map[string]any, error) {
	updates := map[string]any{}
	if input.Make != nil {
		if strings.TrimSpace(*input.Make) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "make cannot be empty")
		}
		updates["make"] = strings.TrimSpace(*input.Make)
	}
	if input.Model != nil {
		if strings.TrimSpace(*input.Model) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "model cannot be empty")
		}
		updates["model"] = strings.TrimSpace(*input.Model)
	}
	if input.Year != nil {
		if *input.Year < minModelYear || *input.Year > time.Now().Year()+1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "year is out of range")
		}
		updates["year"] = *input.Year
	}
	if input.Trim != nil {
		updates["trim"] = *input.Trim
	}
	if input.Color != nil {
		updates["color"] = *input.Color
	}
	if input.VIN != nil {
		updates["vin"] = *input.VIN
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() || input.Price.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
		}
		updates["price"] = *input.Price
	}
	if input.StockQuantity != nil {
		if *input.StockQuantity < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
		}
		updates["stock_quantity"] = *input.StockQuantity
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}
	if input.ImagePaths != nil {
		updates["image_paths"] = pq.StringArray(*input.ImagePaths)
	}
	return updates, nil
}
