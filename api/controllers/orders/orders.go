package orders

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/evmotors/dealerhub-backend/api/middleware"
	"github.com/evmotors/dealerhub-backend/api/responses"
	"github.com/evmotors/dealerhub-backend/api/validators"
	internalorders "github.com/evmotors/dealerhub-backend/internal/orders"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/logger"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
)

type createOrderRequest struct {
	VehicleID  uuid.UUID  `json:"vehicle_id" validate:"required"`
	DealerID   uuid.UUID  `json:"dealer_id" validate:"required"`
	CustomerID *uuid.UUID `json:"customer_id"`
	Notes      *string    `json:"notes"`
}

func actorFromRequest(r *http.Request) (internalorders.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return internalorders.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	actor := internalorders.Actor{UserID: userID, Role: role}
	if rawDealer := middleware.DealerIDFromContext(r.Context()); rawDealer != "" {
		dealerID, err := uuid.Parse(rawDealer)
		if err != nil {
			return internalorders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid dealer id")
		}
		actor.DealerID = &dealerID
	}
	return actor, nil
}

func parseOrderID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

// Create places an order for the acting customer.
func Create(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createOrderRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		customerID := actor.UserID
		if body.CustomerID != nil {
			customerID = *body.CustomerID
		}

		order, err := svc.Create(r.Context(), internalorders.CreateInput{
			CustomerID: customerID,
			VehicleID:  body.VehicleID,
			DealerID:   body.DealerID,
			Notes:      body.Notes,
			Actor:      actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// List returns the acting customer's orders, newest first.
func List(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := listInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input.Filters.CustomerID = &actor.UserID

		list, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// StaffList returns the dealer-scoped order book for staff actors.
func StaffList(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := listInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if actor.DealerID != nil {
			input.Filters.DealerID = actor.DealerID
		}

		list, err := svc.List(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

func listInput(r *http.Request) (internalorders.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return internalorders.ListInput{}, err
	}

	input := internalorders.ListInput{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.OrderStatus(raw)
		if !status.IsValid() {
			return internalorders.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status filter")
		}
		input.Filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status := enums.PaymentStatus(raw)
		if !status.IsValid() {
			return internalorders.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status filter")
		}
		input.Filters.PaymentStatus = &status
	}

	from, err := validators.ParseQueryTime(r, "date_from")
	if err != nil {
		return internalorders.ListInput{}, err
	}
	input.Filters.DateFrom = from

	to, err := validators.ParseQueryTime(r, "date_to")
	if err != nil {
		return internalorders.ListInput{}, err
	}
	input.Filters.DateTo = to

	return input, nil
}

// Detail returns the order plus its full audit trail.
func Detail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		detail, err := svc.Get(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// History returns just the audit rows for an order.
func History(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		history, err := svc.History(r.Context(), orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"history": history})
	}
}

func transitionHandler(svc internalorders.Service, logg *logger.Logger, apply func(*http.Request, uuid.UUID, internalorders.Actor) (*internalorders.OrderDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orderID, err := parseOrderID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := apply(r, orderID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// Confirm moves a processing order to confirmed. Staff only.
func Confirm(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, id uuid.UUID, actor internalorders.Actor) (*internalorders.OrderDTO, error) {
		return svc.Confirm(r.Context(), id, actor)
	})
}

// Pay records the customer's payment on a confirmed order.
func Pay(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, id uuid.UUID, actor internalorders.Actor) (*internalorders.OrderDTO, error) {
		return svc.CompletePayment(r.Context(), id, actor)
	})
}

// Reject lets the customer walk away from a processing order.
func Reject(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, id uuid.UUID, actor internalorders.Actor) (*internalorders.OrderDTO, error) {
		return svc.Reject(r.Context(), id, actor)
	})
}

// Cancel voids a processing or confirmed order. Staff only; refunds if paid.
func Cancel(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, id uuid.UUID, actor internalorders.Actor) (*internalorders.OrderDTO, error) {
		return svc.Cancel(r.Context(), id, actor)
	})
}

// SalesStats aggregates completed sales per vehicle for the actor's dealer.
func SalesStats(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.SalesStats(r.Context(), actor.DealerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"sales": stats})
	}
}
