package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/evmotors/dealerhub-backend/api/responses"
	"github.com/evmotors/dealerhub-backend/api/validators"
	"github.com/evmotors/dealerhub-backend/internal/vehicles"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/logger"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
)

type vehicleCreateRequest struct {
	Make          string          `json:"make" validate:"required"`
	Model         string          `json:"model" validate:"required"`
	Year          int             `json:"year" validate:"required"`
	Trim          *string         `json:"trim"`
	Color         *string         `json:"color"`
	VIN           *string         `json:"vin"`
	Description   *string         `json:"description"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"min=0"`
	IsActive      *bool           `json:"is_active"`
	ImagePaths    []string        `json:"image_paths"`
}

type vehicleUpdateRequest struct {
	Make          *string          `json:"make"`
	Model         *string          `json:"model"`
	Year          *int             `json:"year"`
	Trim          *string          `json:"trim"`
	Color         *string          `json:"color"`
	VIN           *string          `json:"vin"`
	Description   *string          `json:"description"`
	Price         *decimal.Decimal `json:"price"`
	StockQuantity *int             `json:"stock_quantity"`
	IsActive      *bool            `json:"is_active"`
	ImagePaths    *[]string        `json:"image_paths"`
}

func parseVehicleID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "vehicleId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid vehicle id")
	}
	return id, nil
}

// VehicleList serves the public catalog. Hidden vehicles only appear for staff.
func VehicleList(svc vehicles.Service, includeHidden bool, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters := vehicles.ListFilters{
			Make:          strings.TrimSpace(r.URL.Query().Get("make")),
			Model:         strings.TrimSpace(r.URL.Query().Get("model")),
			OnlyAvailable: r.URL.Query().Get("available") == "true",
			IncludeHidden: includeHidden,
		}
		if yearFrom, err := validators.ParseQueryInt(r, "year_from", 0, 0, 9999); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if yearFrom > 0 {
			filters.YearFrom = &yearFrom
		}
		if yearTo, err := validators.ParseQueryInt(r, "year_to", 0, 0, 9999); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		} else if yearTo > 0 {
			filters.YearTo = &yearTo
		}

		result, err := svc.ListVehicles(r.Context(), vehicles.ListVehiclesInput{
			Filters: filters,
			Limit:   limit,
			Cursor:  strings.TrimSpace(r.URL.Query().Get("cursor")),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func VehicleDetail(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		id, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.GetVehicle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

func VehicleCreate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		var body vehicleCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		isActive := true
		if body.IsActive != nil {
			isActive = *body.IsActive
		}

		vehicle, err := svc.CreateVehicle(r.Context(), vehicles.CreateVehicleInput{
			Make:          body.Make,
			Model:         body.Model,
			Year:          body.Year,
			Trim:          body.Trim,
			Color:         body.Color,
			VIN:           body.VIN,
			Description:   body.Description,
			Price:         body.Price,
			StockQuantity: body.StockQuantity,
			IsActive:      isActive,
			ImagePaths:    body.ImagePaths,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

func VehicleUpdate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		id, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body vehicleUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		vehicle, err := svc.UpdateVehicle(r.Context(), id, vehicles.UpdateVehicleInput{
			Make:          body.Make,
			Model:         body.Model,
			Year:          body.Year,
			Trim:          body.Trim,
			Color:         body.Color,
			VIN:           body.VIN,
			Description:   body.Description,
			Price:         body.Price,
			StockQuantity: body.StockQuantity,
			IsActive:      body.IsActive,
			ImagePaths:    body.ImagePaths,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, vehicle)
	}
}

func VehicleDeactivate(svc vehicles.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "vehicles service unavailable"))
			return
		}

		id, err := parseVehicleID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeactivateVehicle(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deactivated"})
	}
}
