package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

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

type dealerReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error)
}

// StockKeeper adjusts vehicle stock inside the order transaction.
type StockKeeper interface {
	Reserve(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error
	Release(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
	Confirm(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error)
	CompletePayment(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error)
	Reject(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error)
	Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDetail, error)
	List(ctx context.Context, input ListInput) (*OrderList, error)
	History(ctx context.Context, orderID uuid.UUID, actor Actor) ([]HistoryDTO, error)
	SalesStats(ctx context.Context, dealerID *uuid.UUID) ([]VehicleSales, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	vehicles  vehicleReader
	dealers   dealerReader
	stock     StockKeeper
	lifecycle *metrics.LifecycleMetrics
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	Repo      Repository
	Tx        txRunner
	Vehicles  vehicleReader
	Dealers   dealerReader
	Stock     StockKeeper
	Lifecycle *metrics.LifecycleMetrics
}

// orderTransitions is the exhaustive set of legal lifecycle edges. Any edge
// not listed here is a state conflict.
var orderTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusProcessing: {enums.OrderStatusConfirmed, enums.OrderStatusRejected, enums.OrderStatusCancelled},
	enums.OrderStatusConfirmed:  {enums.OrderStatusCompleted, enums.OrderStatusCancelled},
	enums.OrderStatusCompleted:  {},
	enums.OrderStatusRejected:   {},
	enums.OrderStatusCancelled:  {},
}

func canTransition(from, to enums.OrderStatus) bool {
	for _, allowed := range orderTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Vehicles == nil {
		return nil, fmt.Errorf("vehicle reader required")
	}
	if params.Dealers == nil {
		return nil, fmt.Errorf("dealer reader required")
	}
	if params.Stock == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	return &service{
		repo:      params.Repo,
		tx:        params.Tx,
		vehicles:  params.Vehicles,
		dealers:   params.Dealers,
		stock:     params.Stock,
		lifecycle: params.Lifecycle,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	if input.CustomerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vehicle id required")
	}
	if input.DealerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dealer id required")
	}
	if input.Actor.Role == enums.RoleCustomer && input.Actor.UserID != input.CustomerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "customers may only order for themselves")
	}

	vehicle, err := s.vehicles.FindByID(ctx, input.VehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vehicle")
	}
	if !vehicle.Purchasable() {
		return nil, pkgerrors.New(pkgerrors.CodeResourceUnavailable, "vehicle is not available")
	}

	dealer, err := s.dealers.FindByID(ctx, input.DealerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dealer")
	}
	if !dealer.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dealer not found")
	}

	started := time.Now()
	var created *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := s.stock.Reserve(ctx, tx, vehicle.ID); err != nil {
			return err
		}

		order := &models.Order{
			ID:            uuid.New(),
			OrderNumber:   newOrderNumber(),
			CustomerID:    input.CustomerID,
			VehicleID:     vehicle.ID,
			DealerID:      dealer.ID,
			Status:        enums.OrderStatusProcessing,
			PaymentStatus: enums.PaymentStatusUnpaid,
			TotalPrice:    vehicle.Price,
			Notes:         input.Notes,
		}
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		if err := s.recordHistory(ctx, repo, order, enums.OrderEventCreated, input.Actor, input.Notes); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		s.lifecycle.IncDenied("order", deniedReason(err))
		return nil, err
	}

	s.lifecycle.IncTransition("order", "create")
	s.lifecycle.ObserveDuration("order", "create", time.Since(started))
	return toDTO(created), nil
}

// Confirm moves a processing order to confirmed. Staff only.
func (s *service) Confirm(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error) {
	return s.transition(ctx, orderID, actor, transitionSpec{
		action:    "confirm",
		target:    enums.OrderStatusConfirmed,
		event:     enums.OrderEventConfirmed,
		staffOnly: true,
		stamp:     "confirmed_at",
	})
}

// CompletePayment marks a confirmed order as completed and paid.
func (s *service) CompletePayment(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error) {
	return s.transition(ctx, orderID, actor, transitionSpec{
		action:        "complete_payment",
		target:        enums.OrderStatusCompleted,
		event:         enums.OrderEventPaymentCompleted,
		customerOwned: true,
		stamp:         "completed_at",
		paymentStatus: enums.PaymentStatusPaid,
	})
}

// Reject lets the customer back out of a processing order. Stock returns to
// the pool.
func (s *service) Reject(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error) {
	return s.transition(ctx, orderID, actor, transitionSpec{
		action:        "reject",
		target:        enums.OrderStatusRejected,
		event:         enums.OrderEventRejected,
		customerOwned: true,
		stamp:         "rejected_at",
		releaseStock:  true,
	})
}

// Cancel aborts a processing or confirmed order and returns its unit of
// stock to the pool. Payment never completes before the completed state,
// so there is no refund bookkeeping here.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDTO, error) {
	return s.transition(ctx, orderID, actor, transitionSpec{
		action:       "cancel",
		target:       enums.OrderStatusCancelled,
		event:        enums.OrderEventCancelled,
		staffOnly:    true,
		stamp:        "cancelled_at",
		releaseStock: true,
	})
}

type transitionSpec struct {
	action        string
	target        enums.OrderStatus
	event         enums.OrderEventKind
	staffOnly     bool
	customerOwned bool
	stamp         string
	paymentStatus enums.PaymentStatus
	releaseStock  bool
}

func (s *service) transition(ctx context.Context, orderID uuid.UUID, actor Actor, spec transitionSpec) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if spec.staffOnly && !actor.Role.IsStaff() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "staff role required")
	}

	started := time.Now()
	var updated *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}

		if err := s.authorize(order, actor, spec); err != nil {
			return err
		}
		if !canTransition(order.Status, spec.target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot move from %s to %s", order.Status, spec.target))
		}

		now := time.Now().UTC()
		updates := map[string]any{
			"status":     spec.target,
			"updated_at": now,
		}
		if spec.stamp != "" {
			updates[spec.stamp] = now
		}

		order.Status = spec.target
		stampOrder(order, spec.stamp, now)

		if spec.paymentStatus != "" {
			updates["payment_status"] = spec.paymentStatus
			order.PaymentStatus = spec.paymentStatus
		}

		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
		}

		if spec.releaseStock {
			if err := s.stock.Release(ctx, tx, order.VehicleID); err != nil {
				return err
			}
		}

		if err := s.recordHistory(ctx, repo, order, spec.event, actor, nil); err != nil {
			return err
		}

		updated = order
		return nil
	})
	if err != nil {
		s.lifecycle.IncDenied("order", deniedReason(err))
		return nil, err
	}

	s.lifecycle.IncTransition("order", spec.action)
	s.lifecycle.ObserveDuration("order", spec.action, time.Since(started))
	return toDTO(updated), nil
}

func (s *service) authorize(order *models.Order, actor Actor, spec transitionSpec) error {
	if actor.Role.IsStaff() {
		if actor.DealerID != nil && *actor.DealerID != order.DealerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to dealer")
		}
		return nil
	}
	if spec.customerOwned && order.CustomerID == actor.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
}

func (s *service) recordHistory(ctx context.Context, repo Repository, order *models.Order, kind enums.OrderEventKind, actor Actor, notes *string) error {
	actorID := actor.UserID
	entry := &models.OrderHistory{
		ID:            uuid.New(),
		OrderID:       order.ID,
		ActorUserID:   &actorID,
		Kind:          kind,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Notes:         notes,
	}
	if err := repo.CreateHistory(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record order history")
	}
	return nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor Actor) (*OrderDetail, error) {
	order, err := s.repo.FindDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.authorizeRead(order, actor); err != nil {
		return nil, err
	}

	history := make([]HistoryDTO, 0, len(order.History))
	for _, entry := range order.History {
		history = append(history, toHistoryDTO(entry))
	}
	return &OrderDetail{
		Order:   *toDTO(order),
		History: history,
	}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*OrderList, error) {
	rows, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, input.Filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	page := pagination.NewPage(rows, input.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})

	orders := make([]OrderDTO, 0, len(page.Items))
	for i := range page.Items {
		orders = append(orders, *toDTO(&page.Items[i]))
	}
	return &OrderList{
		Orders:     orders,
		NextCursor: page.NextCursor,
	}, nil
}

func (s *service) History(ctx context.Context, orderID uuid.UUID, actor Actor) ([]HistoryDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if err := s.authorizeRead(order, actor); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListHistory(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order history")
	}
	history := make([]HistoryDTO, 0, len(rows))
	for _, entry := range rows {
		history = append(history, toHistoryDTO(entry))
	}
	return history, nil
}

func (s *service) SalesStats(ctx context.Context, dealerID *uuid.UUID) ([]VehicleSales, error) {
	stats, err := s.repo.SalesStats(ctx, dealerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query sales stats")
	}
	return stats, nil
}

func (s *service) authorizeRead(order *models.Order, actor Actor) error {
	if actor.Role.IsStaff() {
		if actor.DealerID != nil && *actor.DealerID != order.DealerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to dealer")
		}
		return nil
	}
	if order.CustomerID == actor.UserID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to user")
}

func stampOrder(order *models.Order, column string, at time.Time) {
	switch column {
	case "confirmed_at":
		order.ConfirmedAt = &at
	case "completed_at":
		order.CompletedAt = &at
	case "rejected_at":
		order.RejectedAt = &at
	case "cancelled_at":
		order.CancelledAt = &at
	}
}

func newOrderNumber() string {
	return fmt.Sprintf("ORD-%d", time.Now().UTC().UnixNano())
}

func deniedReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "internal"
	}
	return string(typed.Code())
}
