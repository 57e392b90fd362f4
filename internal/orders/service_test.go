package orders

import (
	"context"
	"testing"
	"time"

	"github.com/evmotors/dealerhub-backend/pkg/db/models"
	"github.com/evmotors/dealerhub-backend/pkg/enums"
	pkgerrors "github.com/evmotors/dealerhub-backend/pkg/errors"
	"github.com/evmotors/dealerhub-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type stubOrdersRepo struct {
	orders    map[uuid.UUID]*models.Order
	histories []models.OrderHistory
	listRows  []models.Order
	stats     []VehicleSales
}

func newStubOrdersRepo() *stubOrdersRepo {
	return &stubOrdersRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (s *stubOrdersRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubOrdersRepo) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	s.orders[order.ID] = order
	return order, nil
}

func (s *stubOrdersRepo) CreateHistory(ctx context.Context, entry *models.OrderHistory) error {
	s.histories = append(s.histories, *entry)
	return nil
}

func (s *stubOrdersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *order
	return &copied, nil
}

func (s *stubOrdersRepo) FindDetail(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, entry := range s.histories {
		if entry.OrderID == id {
			order.History = append(order.History, entry)
		}
	}
	return order, nil
}

func (s *stubOrdersRepo) List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.Order, error) {
	return s.listRows, nil
}

func (s *stubOrdersRepo) ListHistory(ctx context.Context, orderID uuid.UUID) ([]models.OrderHistory, error) {
	var rows []models.OrderHistory
	for _, entry := range s.histories {
		if entry.OrderID == orderID {
			rows = append(rows, entry)
		}
	}
	return rows, nil
}

func (s *stubOrdersRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	order, ok := s.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if status, found := updates["status"]; found {
		order.Status = status.(enums.OrderStatus)
	}
	if payment, found := updates["payment_status"]; found {
		order.PaymentStatus = payment.(enums.PaymentStatus)
	}
	return nil
}

func (s *stubOrdersRepo) SalesStats(ctx context.Context, dealerID *uuid.UUID) ([]VehicleSales, error) {
	return s.stats, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubVehicleReader struct {
	vehicle *models.Vehicle
}

func (s stubVehicleReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	if s.vehicle == nil || s.vehicle.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.vehicle, nil
}

type stubDealerReader struct {
	dealer *models.Dealer
}

func (s stubDealerReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Dealer, error) {
	if s.dealer == nil || s.dealer.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.dealer, nil
}

type stubStockKeeper struct {
	reserved   []uuid.UUID
	released   []uuid.UUID
	reserveErr error
}

func (s *stubStockKeeper) Reserve(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error {
	if s.reserveErr != nil {
		return s.reserveErr
	}
	s.reserved = append(s.reserved, vehicleID)
	return nil
}

func (s *stubStockKeeper) Release(ctx context.Context, tx *gorm.DB, vehicleID uuid.UUID) error {
	s.released = append(s.released, vehicleID)
	return nil
}

type testDeps struct {
	repo  *stubOrdersRepo
	stock *stubStockKeeper
}

func newTestService(t *testing.T, vehicle *models.Vehicle, dealer *models.Dealer) (Service, testDeps) {
	t.Helper()
	repo := newStubOrdersRepo()
	stock := &stubStockKeeper{}
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTxRunner{},
		Vehicles: stubVehicleReader{vehicle: vehicle},
		Dealers:  stubDealerReader{dealer: dealer},
		Stock:    stock,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, testDeps{repo: repo, stock: stock}
}

func testVehicle() *models.Vehicle {
	return &models.Vehicle{
		ID:            uuid.New(),
		Make:          "EVM",
		Model:         "Volt S",
		Year:          2026,
		Price:         decimal.NewFromInt(42000),
		StockQuantity: 3,
		IsActive:      true,
	}
}

func testDealer() *models.Dealer {
	return &models.Dealer{
		ID:       uuid.New(),
		Name:     "EVM Downtown",
		IsActive: true,
	}
}

func customerActor(customerID uuid.UUID) Actor {
	return Actor{UserID: customerID, Role: enums.RoleCustomer}
}

func staffActor(dealerID uuid.UUID) Actor {
	return Actor{UserID: uuid.New(), Role: enums.RoleDealerStaff, DealerID: &dealerID}
}

func mustCreateOrder(t *testing.T, svc Service, vehicle *models.Vehicle, dealer *models.Dealer, customerID uuid.UUID) *OrderDTO {
	t.Helper()
	order, err := svc.Create(context.Background(), CreateInput{
		CustomerID: customerID,
		VehicleID:  vehicle.ID,
		DealerID:   dealer.ID,
		Actor:      customerActor(customerID),
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func assertOrderCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if !pkgerrors.IsCode(err, code) {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestCreateOrderReservesStock(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)

	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	if order.Status != enums.OrderStatusProcessing {
		t.Fatalf("expected processing status, got %s", order.Status)
	}
	if order.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid, got %s", order.PaymentStatus)
	}
	if !order.TotalPrice.Equal(vehicle.Price) {
		t.Fatalf("expected price %s copied from vehicle, got %s", vehicle.Price, order.TotalPrice)
	}
	if order.OrderNumber == "" {
		t.Fatalf("expected order number to be assigned")
	}
	if len(deps.stock.reserved) != 1 || deps.stock.reserved[0] != vehicle.ID {
		t.Fatalf("expected one stock reservation for %s, got %v", vehicle.ID, deps.stock.reserved)
	}
	if len(deps.repo.histories) != 1 || deps.repo.histories[0].Kind != enums.OrderEventCreated {
		t.Fatalf("expected a single created history row, got %v", deps.repo.histories)
	}
}

func TestCreateOrderOutOfStock(t *testing.T) {
	vehicle := testVehicle()
	vehicle.StockQuantity = 0
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID: customerID,
		VehicleID:  vehicle.ID,
		DealerID:   dealer.ID,
		Actor:      customerActor(customerID),
	})
	assertOrderCode(t, err, pkgerrors.CodeResourceUnavailable)
	if len(deps.repo.orders) != 0 {
		t.Fatalf("expected no order persisted")
	}
}

func TestCreateOrderStockRaceReturnsUnavailable(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)
	deps.stock.reserveErr = pkgerrors.New(pkgerrors.CodeResourceUnavailable, "vehicle is not available")

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID: customerID,
		VehicleID:  vehicle.ID,
		DealerID:   dealer.ID,
		Actor:      customerActor(customerID),
	})
	assertOrderCode(t, err, pkgerrors.CodeResourceUnavailable)
	if len(deps.repo.orders) != 0 {
		t.Fatalf("expected no order persisted when reservation fails")
	}
}

func TestCreateOrderInactiveDealer(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	dealer.IsActive = false
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID: customerID,
		VehicleID:  vehicle.ID,
		DealerID:   dealer.ID,
		Actor:      customerActor(customerID),
	})
	assertOrderCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateOrderForAnotherCustomer(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	svc, _ := newTestService(t, vehicle, dealer)

	_, err := svc.Create(context.Background(), CreateInput{
		CustomerID: uuid.New(),
		VehicleID:  vehicle.ID,
		DealerID:   dealer.ID,
		Actor:      customerActor(uuid.New()),
	})
	assertOrderCode(t, err, pkgerrors.CodeForbidden)
}

func TestConfirmFromProcessing(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	confirmed, err := svc.Confirm(context.Background(), order.ID, staffActor(dealer.ID))
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if confirmed.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed, got %s", confirmed.Status)
	}
	if confirmed.ConfirmedAt == nil {
		t.Fatalf("expected confirmed_at timestamp")
	}
	last := deps.repo.histories[len(deps.repo.histories)-1]
	if last.Kind != enums.OrderEventConfirmed || last.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed history row, got %+v", last)
	}
}

func TestConfirmTwiceIsStateConflict(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	actor := staffActor(dealer.ID)
	if _, err := svc.Confirm(context.Background(), order.ID, actor); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	rows := len(deps.repo.histories)

	_, err := svc.Confirm(context.Background(), order.ID, actor)
	assertOrderCode(t, err, pkgerrors.CodeStateConflict)
	if len(deps.repo.histories) != rows {
		t.Fatalf("expected no history row for the denied transition")
	}
}

func TestConfirmRequiresStaff(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	_, err := svc.Confirm(context.Background(), order.ID, customerActor(customerID))
	assertOrderCode(t, err, pkgerrors.CodeForbidden)
}

func TestConfirmWrongDealerForbidden(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	_, err := svc.Confirm(context.Background(), order.ID, staffActor(uuid.New()))
	assertOrderCode(t, err, pkgerrors.CodeForbidden)
}

func TestRejectReleasesStock(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	rejected, err := svc.Reject(context.Background(), order.ID, customerActor(customerID))
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rejected.Status != enums.OrderStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if len(deps.stock.released) != 1 || deps.stock.released[0] != vehicle.ID {
		t.Fatalf("expected stock release for %s, got %v", vehicle.ID, deps.stock.released)
	}
	last := deps.repo.histories[len(deps.repo.histories)-1]
	if last.Kind != enums.OrderEventRejected {
		t.Fatalf("expected rejected history row, got %+v", last)
	}
}

func TestRejectByOtherCustomerForbidden(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	_, err := svc.Reject(context.Background(), order.ID, customerActor(uuid.New()))
	assertOrderCode(t, err, pkgerrors.CodeForbidden)
}

func TestRejectAfterConfirmIsStateConflict(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	if _, err := svc.Confirm(context.Background(), order.ID, staffActor(dealer.ID)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	_, err := svc.Reject(context.Background(), order.ID, customerActor(customerID))
	assertOrderCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCompletePaymentMarksPaid(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	if _, err := svc.Confirm(context.Background(), order.ID, staffActor(dealer.ID)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	completed, err := svc.CompletePayment(context.Background(), order.ID, customerActor(customerID))
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if completed.Status != enums.OrderStatusCompleted {
		t.Fatalf("expected completed, got %s", completed.Status)
	}
	if completed.PaymentStatus != enums.PaymentStatusPaid {
		t.Fatalf("expected paid, got %s", completed.PaymentStatus)
	}
	if completed.CompletedAt == nil {
		t.Fatalf("expected completed_at timestamp")
	}
	last := deps.repo.histories[len(deps.repo.histories)-1]
	if last.Kind != enums.OrderEventPaymentCompleted {
		t.Fatalf("expected payment_completed history row, got %+v", last)
	}
}

func TestCompletePaymentFromProcessingIsStateConflict(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	_, err := svc.CompletePayment(context.Background(), order.ID, customerActor(customerID))
	assertOrderCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCancelConfirmedOrderReleasesStock(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	if _, err := svc.Confirm(context.Background(), order.ID, staffActor(dealer.ID)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	cancelled, err := svc.Cancel(context.Background(), order.ID, staffActor(dealer.ID))
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != enums.OrderStatusCancelled {
		t.Fatalf("expected cancelled, got %s", cancelled.Status)
	}
	if cancelled.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected unpaid after cancelling an unpaid order, got %s", cancelled.PaymentStatus)
	}
	if len(deps.stock.released) != 1 {
		t.Fatalf("expected one stock release, got %v", deps.stock.released)
	}
}

func TestCancelConfirmedOrderWritesSingleHistoryRow(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, deps := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	if _, err := svc.Confirm(context.Background(), order.ID, staffActor(dealer.ID)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	before := len(deps.repo.histories)
	cancelled, err := svc.Cancel(context.Background(), order.ID, staffActor(dealer.ID))
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.PaymentStatus != enums.PaymentStatusUnpaid {
		t.Fatalf("expected payment status untouched by cancel, got %s", cancelled.PaymentStatus)
	}

	added := deps.repo.histories[before:]
	if len(added) != 1 {
		t.Fatalf("expected exactly one history row for cancel, got %d", len(added))
	}
	if added[0].Kind != enums.OrderEventCancelled {
		t.Fatalf("expected cancelled history row, got %s", added[0].Kind)
	}
}

func TestCancelCompletedOrderIsStateConflict(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	staff := staffActor(dealer.ID)
	if _, err := svc.Confirm(context.Background(), order.ID, staff); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := svc.CompletePayment(context.Background(), order.ID, customerActor(customerID)); err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	_, err := svc.Cancel(context.Background(), order.ID, staff)
	assertOrderCode(t, err, pkgerrors.CodeStateConflict)
}

func TestGetReturnsHistory(t *testing.T) {
	vehicle := testVehicle()
	dealer := testDealer()
	customerID := uuid.New()
	svc, _ := newTestService(t, vehicle, dealer)
	order := mustCreateOrder(t, svc, vehicle, dealer, customerID)

	if _, err := svc.Confirm(context.Background(), order.ID, staffActor(dealer.ID)); err != nil {
		t.Fatalf("confirm: %v", err)
	}

	detail, err := svc.Get(context.Background(), order.ID, customerActor(customerID))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(detail.History) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(detail.History))
	}
	if detail.Order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("expected confirmed order, got %s", detail.Order.Status)
	}

	_, err = svc.Get(context.Background(), order.ID, customerActor(uuid.New()))
	assertOrderCode(t, err, pkgerrors.CodeForbidden)
}

func TestGetUnknownOrder(t *testing.T) {
	svc, _ := newTestService(t, testVehicle(), testDealer())
	_, err := svc.Get(context.Background(), uuid.New(), customerActor(uuid.New()))
	assertOrderCode(t, err, pkgerrors.CodeNotFound)
}
