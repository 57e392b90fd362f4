package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/evmotors/dealerhub-backend/api/responses"
	"github.com/evmotors/dealerhub-backend/api/validators"
	"github.com/evmotors/dealerhub-backend/internal/dealers"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/logger"
)

type dealerCreateRequest struct {
	Name    string  `json:"name" validate:"required"`
	Code    string  `json:"code" validate:"required,min=2,max=16"`
	Address string  `json:"address" validate:"required"`
	City    string  `json:"city" validate:"required"`
	Phone   *string `json:"phone"`
	Email   *string `json:"email" validate:"omitempty,email"`
}

type dealerUpdateRequest struct {
	Name     *string `json:"name"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" validate:"omitempty,email"`
	IsActive *bool   `json:"is_active"`
}

func parseDealerID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "dealerId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid dealer id")
	}
	return id, nil
}

func DealerList(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealers service unavailable"))
			return
		}

		list, err := svc.ListDealers(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string][]dealers.DealerDTO{"dealers": list})
	}
}

func DealerDetail(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealers service unavailable"))
			return
		}

		id, err := parseDealerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := svc.GetDealer(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dealer)
	}
}

func DealerCreate(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealers service unavailable"))
			return
		}

		var body dealerCreateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := svc.CreateDealer(r.Context(), dealers.CreateDealerInput{
			Name:    body.Name,
			Code:    body.Code,
			Address: body.Address,
			City:    body.City,
			Phone:   body.Phone,
			Email:   body.Email,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, dealer)
	}
}

func DealerUpdate(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealers service unavailable"))
			return
		}

		id, err := parseDealerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body dealerUpdateRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dealer, err := svc.UpdateDealer(r.Context(), id, dealers.UpdateDealerInput{
			Name:     body.Name,
			Address:  body.Address,
			City:     body.City,
			Phone:    body.Phone,
			Email:    body.Email,
			IsActive: body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dealer)
	}
}

func DealerDelete(svc dealers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dealers service unavailable"))
			return
		}

		id, err := parseDealerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteDealer(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
