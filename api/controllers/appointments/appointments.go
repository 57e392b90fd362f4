package appointments

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/evmotors/dealerhub-backend/api/middleware"
	"github.com/evmotors/dealerhub-backend/api/responses"
	"github.com/evmotors/dealerhub-backend/api/validators"
	internalappointments "github.com/evmotors/dealerhub-backend/internal/appointments"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/logger"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
)

type createAppointmentRequest struct {
	VehicleID     uuid.UUID `json:"vehicle_id" validate:"required"`
	AppointmentAt time.Time `json:"appointment_at" validate:"required"`
	Notes         *string   `json:"notes"`
}

func actorFromRequest(r *http.Request) (internalappointments.Actor, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return internalappointments.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		return internalappointments.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}

	role, err := enums.ParseUserRole(middleware.RoleFromContext(r.Context()))
	if err != nil {
		return internalappointments.Actor{}, pkgerrors.New(pkgerrors.CodeForbidden, "unknown actor role")
	}

	actor := internalappointments.Actor{UserID: userID, Role: role}
	if rawDealer := middleware.DealerIDFromContext(r.Context()); rawDealer != "" {
		dealerID, err := uuid.Parse(rawDealer)
		if err != nil {
			return internalappointments.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid dealer id")
		}
		actor.DealerID = &dealerID
	}
	return actor, nil
}

func parseAppointmentID(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "appointmentId"))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "appointment id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid appointment id")
	}
	return id, nil
}

// Create books a test drive for the acting customer.
func Create(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointments service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body createAppointmentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointment, err := svc.Create(r.Context(), internalappointments.CreateInput{
			CustomerID:    actor.UserID,
			VehicleID:     body.VehicleID,
			AppointmentAt: body.AppointmentAt,
			Notes:         body.Notes,
			Actor:         actor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, appointment)
	}
}

// Availability reports whether a vehicle slot is free.
func Availability(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointments service unavailable"))
			return
		}

		vehicleID, err := validators.ParseQueryUUID(r, "vehicle_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if vehicleID == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "vehicle_id is required"))
			return
		}

		at, err := validators.ParseQueryTime(r, "at")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if at == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "at is required"))
			return
		}

		available, err := svc.IsTimeSlotAvailable(r.Context(), *vehicleID, *at)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, internalappointments.AvailabilityResult{
			VehicleID:     *vehicleID,
			AppointmentAt: *at,
			Available:     available,
		})
	}
}

// List returns the acting customer's appointments.
func List(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointments service unavailable"))
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

// StaffList returns the dealer-scoped appointment book for staff actors.
func StaffList(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointments service unavailable"))
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

func listInput(r *http.Request) (internalappointments.ListInput, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return internalappointments.ListInput{}, err
	}

	input := internalappointments.ListInput{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status := enums.AppointmentStatus(raw)
		if !status.IsValid() {
			return internalappointments.ListInput{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown appointment status filter")
		}
		input.Filters.Status = &status
	}

	vehicleID, err := validators.ParseQueryUUID(r, "vehicle_id")
	if err != nil {
		return internalappointments.ListInput{}, err
	}
	input.Filters.VehicleID = vehicleID

	from, err := validators.ParseQueryTime(r, "date_from")
	if err != nil {
		return internalappointments.ListInput{}, err
	}
	input.Filters.DateFrom = from

	to, err := validators.ParseQueryTime(r, "date_to")
	if err != nil {
		return internalappointments.ListInput{}, err
	}
	input.Filters.DateTo = to

	return input, nil
}

// Detail returns a single appointment, scoped to the owner or their dealer.
func Detail(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointments service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointmentID, err := parseAppointmentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointment, err := svc.Get(r.Context(), appointmentID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, appointment)
	}
}

func transitionHandler(svc internalappointments.Service, logg *logger.Logger, apply func(*http.Request, uuid.UUID, internalappointments.Actor) (*internalappointments.AppointmentDTO, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "appointments service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointmentID, err := parseAppointmentID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		appointment, err := apply(r, appointmentID, actor)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, appointment)
	}
}

// Confirm moves a pending appointment to confirmed. Staff only.
func Confirm(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, id uuid.UUID, actor internalappointments.Actor) (*internalappointments.AppointmentDTO, error) {
		return svc.Confirm(r.Context(), id, actor)
	})
}

// Cancel voids a pending or confirmed appointment.
func Cancel(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, id uuid.UUID, actor internalappointments.Actor) (*internalappointments.AppointmentDTO, error) {
		return svc.Cancel(r.Context(), id, actor)
	})
}

// Complete closes out a confirmed appointment after the drive. Staff only.
func Complete(svc internalappointments.Service, logg *logger.Logger) http.HandlerFunc {
	return transitionHandler(svc, logg, func(r *http.Request, id uuid.UUID, actor internalappointments.Actor) (*internalappointments.AppointmentDTO, error) {
		return svc.Complete(r.Context(), id, actor)
	})
}
