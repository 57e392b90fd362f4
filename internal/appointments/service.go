package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/config"
	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/metrics"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type vehicleReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
}

type dealerPicker interface {
	FirstActive(ctx context.Context) (*models.Dealer, error)
}

// Service defines the test-drive appointment operations.
type Service interface {
	IsTimeSlotAvailable(ctx context.Context, vehicleID uuid.UUID, at time.Time) (bool, error)
	Create(ctx context.Context, input CreateInput) (*AppointmentDTO, error)
	Confirm(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error)
	Complete(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error)
	Get(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error)
	List(ctx context.Context, input ListInput) (*AppointmentList, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	vehicles  vehicleReader
	dealers   dealerPicker
	cfg       config.AppointmentsConfig
	lifecycle *metrics.LifecycleMetrics
}

// ServiceParams bundles the dependencies required to build an appointment service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Vehicles  vehicleReader
	Dealers   dealerPicker
	Config    config.AppointmentsConfig
	Lifecycle *metrics.LifecycleMetrics
}

// appointmentTransitions is the exhaustive set of legal lifecycle edges.
var appointmentTransitions = map[enums.AppointmentStatus][]enums.AppointmentStatus{
	enums.AppointmentStatusPending:   {enums.AppointmentStatusConfirmed, enums.AppointmentStatusCancelled},
	enums.AppointmentStatusConfirmed: {enums.AppointmentStatusCompleted, enums.AppointmentStatusCancelled},
	enums.AppointmentStatusCancelled: {},
	enums.AppointmentStatusCompleted: {},
}

func canTransition(from, to enums.AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NewService builds an appointment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("appointments repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Vehicles == nil {
		return nil, fmt.Errorf("vehicle reader required")
	}
	if params.Dealers == nil {
		return nil, fmt.Errorf("dealer picker required")
	}
	if params.Config.SlotWindow <= 0 {
		return nil, fmt.Errorf("slot window must be positive")
	}
	if params.Config.MinAdvance <= 0 {
		return nil, fmt.Errorf("minimum advance must be positive")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		vehicles:  params.Vehicles,
		dealers:   params.Dealers,
		cfg:       params.Config,
		lifecycle: params.Lifecycle,
	}, nil
}

// IsTimeSlotAvailable reports whether no active appointment for the vehicle
// sits within the exclusion window around the requested time.
func (s *service) IsTimeSlotAvailable(ctx context.Context, vehicleID uuid.UUID, at time.Time) (bool, error) {
	if vehicleID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if at.IsZero() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "appointment time required")
	}

	count, err := s.repo.CountActiveInWindow(ctx, vehicleID, at.Add(-s.cfg.SlotWindow), at.Add(s.cfg.SlotWindow))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slot availability")
	}
	return count == 0, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*AppointmentDTO, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if input.Actor.Role == enums.RoleCustomer && input.Actor.UserID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customers may only book for themselves")
	}
	if input.AppointmentAt.Before(time.Now().Add(s.cfg.MinAdvance)) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("appointments must be booked at least %s in advance", s.cfg.MinAdvance))
	}

	vehicle, err := s.vehicles.FindByID(ctx, input.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if !vehicle.Purchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeResourceUnavailable, "vehicle is not available for test drives")
	}

	dealer, err := s.dealers.FirstActive(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "no active dealer available")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign dealer")
	}

	started := time.Now()
	var created *models.TestDriveAppointment
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindActiveByCustomer(ctx, input.CustomerID); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "customer already has an active appointment")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active appointments")
		}

		window := s.cfg.SlotWindow
		count, err := repo.CountActiveInWindow(ctx, vehicle.ID,
			input.AppointmentAt.Add(-window), input.AppointmentAt.Add(window))
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slot availability")
		}
		if count > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "time slot is not available")
		}

		appointment := &models.TestDriveAppointment{
			ID:            uuid.New(),
			CustomerID:    input.CustomerID,
			VehicleID:     vehicle.ID,
			DealerID:      dealer.ID,
			AppointmentAt: input.AppointmentAt.UTC(),
			Status:        enums.AppointmentStatusPending,
			Notes:         input.Notes,
		}
		if _, err := repo.Create(ctx, appointment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create appointment")
		}

		created = appointment
		return nil
	})
	if err != nil {
		s.lifecycle.IncDenied("appointment", deniedReason(err))
		return nil, err
	}

	s.lifecycle.IncTransition("appointment", "create")
	s.lifecycle.ObserveDuration("appointment", "create", time.Since(started))
	return toDTO(created), nil
}

// Confirm moves a pending appointment to confirmed. Staff only.
func (s *service) Confirm(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error) {
	return s.transition(ctx, appointmentID, actor, transitionSpec{
		action:    "confirm",
		target:    enums.AppointmentStatusConfirmed,
		staffOnly: true,
		stamp:     "confirmed_at",
	})
}

// Cancel aborts a pending or confirmed appointment. Customers may cancel
// their own booking.
func (s *service) Cancel(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error) {
	return s.transition(ctx, appointmentID, actor, transitionSpec{
		action:        "cancel",
		target:        enums.AppointmentStatusCancelled,
		customerOwned: true,
		stamp:         "cancelled_at",
	})
}

// Complete closes out a confirmed appointment after the test drive happened.
func (s *service) Complete(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error) {
	return s.transition(ctx, appointmentID, actor, transitionSpec{
		action:    "complete",
		target:    enums.AppointmentStatusCompleted,
		staffOnly: true,
		stamp:     "completed_at",
	})
}

type transitionSpec struct {
	action        string
	target        enums.AppointmentStatus
	staffOnly     bool
	customerOwned bool
	stamp         string
}

func (s *service) transition(ctx context.Context, appointmentID uuid.UUID, actor Actor, spec transitionSpec) (*AppointmentDTO, error) {
	if appointmentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "appointment id required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if spec.staffOnly && !actor.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	started := time.Now()
	var updated *models.TestDriveAppointment
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		appointment, err := repo.FindByID(ctx, appointmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
		}

		if err := s.authorize(appointment, actor, spec); err != nil {
			return err
		}
		if !canTransition(appointment.Status, spec.target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("appointment cannot move from %s to %s", appointment.Status, spec.target))
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":     spec.target,
			"updated_at": now,
			spec.stamp:   now,
		}
		if err := repo.Update(ctx, appointment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update appointment")
		}

		appointment.Status = spec.target
		stampAppointment(appointment, spec.stamp, now)
		updated = appointment
		return nil
	})
	if err != nil {
		s.lifecycle.IncDenied("appointment", deniedReason(err))
		return nil, err
	}

	s.lifecycle.IncTransition("appointment", spec.action)
	s.lifecycle.ObserveDuration("appointment", spec.action, time.Since(started))
	return toDTO(updated), nil
}

func (s *service) authorize(appointment *models.TestDriveAppointment, actor Actor, spec transitionSpec) error {
	if actor.Role.IsStaff() {
		if actor.DealerID != nil && *actor.DealerID != appointment.DealerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to dealer")
		}
		return nil
	}
	if spec.customerOwned && appointment.CustomerID == actor.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to user")
}

func (s *service) Get(ctx context.Context, appointmentID uuid.UUID, actor Actor) (*AppointmentDTO, error) {
	appointment, err := s.repo.FindByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "appointment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load appointment")
	}
	if actor.Role.IsStaff() {
		if actor.DealerID != nil && *actor.DealerID != appointment.DealerID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to dealer")
		}
	} else if appointment.CustomerID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "appointment does not belong to user")
	}
	return toDTO(appointment), nil
}

func (s *service) List(ctx context.Context, input ListInput) (*AppointmentList, error) {
	rows, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list appointments")
	}

	page := pagination.NewPage(rows, input.Limit, func(a models.TestDriveAppointment) pagination.Cursor {
		return pagination.Cursor{CreatedAt: a.CreatedAt, ID: a.ID}
	})

	appointments := make([]AppointmentDTO, 0, len(page.Items))
	for i := range page.Items {
		appointments = append(appointments, *toDTO(&page.Items[i]))
	}
	return &AppointmentList{
		Appointments: appointments,
		NextCursor:   page.NextCursor,
	}, nil
}

func stampAppointment(appointment *models.TestDriveAppointment, column string, at time.Time) {
	switch column {
	case "confirmed_at":
		appointment.ConfirmedAt = &at
	case "completed_at":
		appointment.CompletedAt = &at
	case "cancelled_at":
		appointment.CancelledAt = &at
	}
}

func deniedReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "internal"
	}
	return string(typed.Code())
}
