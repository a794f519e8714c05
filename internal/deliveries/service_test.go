package deliveries

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/internal/orders"
	"github.com/angelmondragon/streetlink-backend/internal/pricing"
	"github.com/angelmondragon/streetlink-backend/pkg/config"
	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

type stubDeliveryRepo struct {
	assignments map[uuid.UUID]*models.DeliveryAssignment
	byOrder     map[uuid.UUID]uuid.UUID
}

func newStubDeliveryRepo() *stubDeliveryRepo {
	return &stubDeliveryRepo{
		assignments: map[uuid.UUID]*models.DeliveryAssignment{},
		byOrder:     map[uuid.UUID]uuid.UUID{},
	}
}

func (s *stubDeliveryRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubDeliveryRepo) Create(ctx context.Context, assignment *models.DeliveryAssignment) (*models.DeliveryAssignment, error) {
	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	s.assignments[assignment.ID] = assignment
	s.byOrder[assignment.OrderID] = assignment.ID
	return assignment, nil
}

func (s *stubDeliveryRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAssignment, error) {
	if a, ok := s.assignments[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDeliveryRepo) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, error) {
	if id, ok := s.byOrder[orderID]; ok {
		return s.FindByID(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubDeliveryRepo) ListAvailable(ctx context.Context, params pagination.Params) (*AssignmentList, error) {
	var rows []models.DeliveryAssignment
	for _, a := range s.assignments {
		if a.Status == enums.DeliveryStatusAvailable && a.AgentID == nil {
			rows = append(rows, *a)
		}
	}
	return &AssignmentList{Assignments: fromModels(rows)}, nil
}

func (s *stubDeliveryRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*AssignmentList, error) {
	var rows []models.DeliveryAssignment
	for _, a := range s.assignments {
		if a.AgentID != nil && *a.AgentID == agentID {
			rows = append(rows, *a)
		}
	}
	return &AssignmentList{Assignments: fromModels(rows)}, nil
}

func (s *stubDeliveryRepo) ListByDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*AssignmentList, error) {
	return &AssignmentList{}, nil
}

func (s *stubDeliveryRepo) Claim(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	a, ok := s.assignments[id]
	if !ok || a.Status != enums.DeliveryStatusAvailable || a.AgentID != nil {
		return 0, nil
	}
	a.AgentID = &agentID
	a.Status = enums.DeliveryStatusAssigned
	return 1, nil
}

func (s *stubDeliveryRepo) UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.DeliveryStatus, updates map[string]any) (int64, error) {
	a, ok := s.assignments[id]
	if !ok || a.Status != expected {
		return 0, nil
	}
	applyAssignmentUpdates(a, updates)
	return 1, nil
}

func applyAssignmentUpdates(a *models.DeliveryAssignment, updates map[string]any) {
	for key, value := range updates {
		switch key {
		case "status":
			a.Status = value.(enums.DeliveryStatus)
		case "payment_status":
			a.PaymentStatus = value.(enums.PaymentStatus)
		case "current_latitude":
			v := value.(float64)
			a.CurrentLatitude = &v
		case "current_longitude":
			v := value.(float64)
			a.CurrentLongitude = &v
		case "notes":
			a.Notes = value.(*string)
		}
	}
}

type stubOrderReader struct {
	orders map[uuid.UUID]*models.VendorOrder
}

func (s *stubOrderReader) FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error) {
	if o, ok := s.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func testCalculator(t *testing.T) *pricing.Calculator {
	t.Helper()
	calc, err := pricing.NewCalculator(config.DeliveryConfig{BaseFee: "50.00", PerKmFee: "8.00", AvgSpeedKmph: 25})
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}
	return calc
}

func decimalFromString(t *testing.T, value string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(value)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", value, err)
	}
	return d
}

type deliveryFixtures struct {
	svc    Service
	repo   *stubDeliveryRepo
	orders *stubOrderReader
}

func setupDeliveryService(t *testing.T) *deliveryFixtures {
	t.Helper()
	f := &deliveryFixtures{
		repo:   newStubDeliveryRepo(),
		orders: &stubOrderReader{orders: map[uuid.UUID]*models.VendorOrder{}},
	}
	svc, err := NewService(f.repo, f.orders, testCalculator(t))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func seedOrder(f *deliveryFixtures, distributorID uuid.UUID, lat, lng *float64) *models.VendorOrder {
	order := &models.VendorOrder{
		ID:                uuid.New(),
		VendorID:          uuid.New(),
		DistributorID:     distributorID,
		OrderNumber:       "SL-1-abcdef",
		Status:            enums.OrderStatusShipped,
		DeliveryAddress:   "Stand 14, Mercado Central",
		DeliveryLatitude:  lat,
		DeliveryLongitude: lng,
	}
	f.orders.orders[order.ID] = order
	return order
}

func seedAssignment(t *testing.T, f *deliveryFixtures, order *models.VendorOrder) *AssignmentDTO {
	t.Helper()
	pickupLat, pickupLng := 19.4326, -99.1332
	err := f.svc.EnsureForOrder(context.Background(), nil, orders.AssignmentInput{
		Order:         order,
		PickupAddress: "Warehouse 3",
		PickupLat:     &pickupLat,
		PickupLng:     &pickupLng,
	})
	if err != nil {
		t.Fatalf("ensure assignment: %v", err)
	}
	model, err := f.repo.FindByOrderID(context.Background(), order.ID)
	if err != nil {
		t.Fatalf("find assignment: %v", err)
	}
	return FromModel(model)
}

func TestEnsureForOrderComputesQuote(t *testing.T) {
	f := setupDeliveryService(t)
	lat, lng := 19.4426, -99.1332
	order := seedOrder(f, uuid.New(), &lat, &lng)

	assignment := seedAssignment(t, f, order)

	if assignment.Status != enums.DeliveryStatusAvailable {
		t.Errorf("status = %s, want available", assignment.Status)
	}
	if assignment.PaymentMethod != enums.PaymentMethodCashOnDelivery {
		t.Errorf("payment method = %s, want cash_on_delivery", assignment.PaymentMethod)
	}
	if assignment.EstimatedDistance == nil || assignment.EstimatedDistance.IsZero() {
		t.Error("expected non-zero estimated distance")
	}
	if assignment.EstimatedTime == nil || *assignment.EstimatedTime < 1 {
		t.Error("expected positive estimated time")
	}
	if assignment.DeliveryFee.LessThanOrEqual(decimalFromString(t, "50.00")) {
		t.Errorf("fee %s should exceed the base fee", assignment.DeliveryFee)
	}
}

func TestEnsureForOrderWithoutCoordsFallsBackToBaseFee(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)

	err := f.svc.EnsureForOrder(context.Background(), nil, orders.AssignmentInput{
		Order:         order,
		PickupAddress: "Warehouse 3",
	})
	if err != nil {
		t.Fatalf("ensure assignment: %v", err)
	}

	model, _ := f.repo.FindByOrderID(context.Background(), order.ID)
	if model.DeliveryFee.StringFixed(2) != "50.00" {
		t.Errorf("fee = %s, want base 50.00", model.DeliveryFee)
	}
	if model.EstimatedDistance.Valid {
		t.Error("expected no distance estimate without coordinates")
	}
}

func TestEnsureForOrderIdempotent(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)

	input := orders.AssignmentInput{Order: order, PickupAddress: "Warehouse 3"}
	if err := f.svc.EnsureForOrder(context.Background(), nil, input); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := f.svc.EnsureForOrder(context.Background(), nil, input); err != nil {
		t.Fatalf("replayed ensure: %v", err)
	}
	if len(f.repo.assignments) != 1 {
		t.Errorf("expected a single assignment, got %d", len(f.repo.assignments))
	}
}

func TestAcceptSingleWinner(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)

	winner := uuid.New()
	loser := uuid.New()

	accepted, err := f.svc.Accept(context.Background(), winner, assignment.ID)
	if err != nil {
		t.Fatalf("winner accept: %v", err)
	}
	if accepted.Status != enums.DeliveryStatusAssigned {
		t.Errorf("status = %s, want assigned", accepted.Status)
	}
	if accepted.AgentID == nil || *accepted.AgentID != winner {
		t.Error("winner not bound to assignment")
	}

	_, err = f.svc.Accept(context.Background(), loser, assignment.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict for second accept, got %v", err)
	}

	// Replay from the winner is a no-op success.
	replayed, err := f.svc.Accept(context.Background(), winner, assignment.ID)
	if err != nil {
		t.Fatalf("winner replay: %v", err)
	}
	if replayed.Status != enums.DeliveryStatusAssigned {
		t.Errorf("replay changed status to %s", replayed.Status)
	}
}

func TestAcceptUnknownAssignment(t *testing.T) {
	f := setupDeliveryService(t)

	_, err := f.svc.Accept(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusMonotonic(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)
	agent := uuid.New()
	if _, err := f.svc.Accept(context.Background(), agent, assignment.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	// Skipping picked_up is rejected.
	_, err := f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: "in_transit"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for skip, got %v", err)
	}

	for _, status := range []string{"picked_up", "in_transit", "delivered"} {
		dto, err := f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: status})
		if err != nil {
			t.Fatalf("transition to %s: %v", status, err)
		}
		if string(dto.Status) != status {
			t.Errorf("status = %s, want %s", dto.Status, status)
		}
	}

	// Backwards is rejected.
	_, err = f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: "picked_up"})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict going backwards, got %v", err)
	}
}

func TestUpdateStatusRefusesCompleted(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)
	agent := uuid.New()
	_, _ = f.svc.Accept(context.Background(), agent, assignment.ID)

	_, err := f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: "completed"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUpdateStatusForeignAgentForbidden(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)
	_, _ = f.svc.Accept(context.Background(), uuid.New(), assignment.ID)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New(), assignment.ID, UpdateStatusRequest{Status: "picked_up"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestUpdateLocationOnlyInTransit(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)
	agent := uuid.New()
	_, _ = f.svc.Accept(context.Background(), agent, assignment.ID)

	_, err := f.svc.UpdateLocation(context.Background(), agent, assignment.ID, UpdateLocationRequest{Latitude: 19.4, Longitude: -99.1})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict before in_transit, got %v", err)
	}

	_, _ = f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: "picked_up"})
	_, _ = f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: "in_transit"})

	dto, err := f.svc.UpdateLocation(context.Background(), agent, assignment.ID, UpdateLocationRequest{Latitude: 19.4, Longitude: -99.1})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if dto.CurrentLatitude == nil || *dto.CurrentLatitude != 19.4 {
		t.Error("current latitude not stored")
	}
}

func TestCompleteSettlesPayment(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)
	agent := uuid.New()
	_, _ = f.svc.Accept(context.Background(), agent, assignment.ID)
	for _, status := range []string{"picked_up", "in_transit", "delivered"} {
		_, _ = f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: status})
	}

	dto, err := f.svc.Complete(context.Background(), agent, assignment.ID, CompleteRequest{PaymentStatus: "paid"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if dto.Status != enums.DeliveryStatusCompleted {
		t.Errorf("status = %s, want completed", dto.Status)
	}
	if dto.PaymentStatus != enums.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", dto.PaymentStatus)
	}

	// Terminal: no further transitions.
	_, err = f.svc.UpdateStatus(context.Background(), agent, assignment.ID, UpdateStatusRequest{Status: "delivered"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict after completion, got %v", err)
	}
}

func TestCompleteRequiresDeliveredState(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)
	agent := uuid.New()
	_, _ = f.svc.Accept(context.Background(), agent, assignment.ID)

	_, err := f.svc.Complete(context.Background(), agent, assignment.ID, CompleteRequest{PaymentStatus: "paid"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCompleteRejectsPendingPayment(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)
	agent := uuid.New()
	_, _ = f.svc.Accept(context.Background(), agent, assignment.ID)

	_, err := f.svc.Complete(context.Background(), agent, assignment.ID, CompleteRequest{PaymentStatus: "pending"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTrackingReadAfterWrite(t *testing.T) {
	f := setupDeliveryService(t)
	order := seedOrder(f, uuid.New(), nil, nil)
	assignment := seedAssignment(t, f, order)

	tracking, err := f.svc.Tracking(context.Background(), assignment.ID)
	if err != nil {
		t.Fatalf("tracking: %v", err)
	}
	if tracking.Status != enums.DeliveryStatusAvailable {
		t.Errorf("tracking status = %s, want available", tracking.Status)
	}
	if tracking.DeliveryAddress != order.DeliveryAddress {
		t.Errorf("tracking delivery address mismatch")
	}
}

func TestTrackingUnknownAssignment(t *testing.T) {
	f := setupDeliveryService(t)

	_, err := f.svc.Tracking(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateForDistributorConflictsOnDuplicate(t *testing.T) {
	f := setupDeliveryService(t)
	distributorID := uuid.New()
	order := seedOrder(f, distributorID, nil, nil)

	_, err := f.svc.CreateForDistributor(context.Background(), distributorID, CreateAssignmentRequest{
		OrderID:       order.ID,
		PickupAddress: "Warehouse 3",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = f.svc.CreateForDistributor(context.Background(), distributorID, CreateAssignmentRequest{
		OrderID:       order.ID,
		PickupAddress: "Warehouse 3",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	_, err = f.svc.CreateForDistributor(context.Background(), uuid.New(), CreateAssignmentRequest{
		OrderID:       order.ID,
		PickupAddress: "Warehouse 3",
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign distributor, got %v", err)
	}
}
