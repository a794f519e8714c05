package deliveries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/internal/orders"
	"github.com/angelmondragon/streetlink-backend/internal/pricing"
	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

// Service defines the delivery assignment lifecycle operations.
type Service interface {
	EnsureForOrder(ctx context.Context, tx *gorm.DB, input orders.AssignmentInput) error
	CreateForDistributor(ctx context.Context, distributorID uuid.UUID, req CreateAssignmentRequest) (*AssignmentDTO, error)
	ListAvailable(ctx context.Context, params pagination.Params) (*AssignmentList, error)
	ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*AssignmentList, error)
	ListForDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*AssignmentList, error)
	Accept(ctx context.Context, agentID, assignmentID uuid.UUID) (*AssignmentDTO, error)
	UpdateStatus(ctx context.Context, agentID, assignmentID uuid.UUID, req UpdateStatusRequest) (*AssignmentDTO, error)
	OverrideStatus(ctx context.Context, distributorID, assignmentID uuid.UUID, req UpdateStatusRequest) (*AssignmentDTO, error)
	UpdateLocation(ctx context.Context, agentID, assignmentID uuid.UUID, req UpdateLocationRequest) (*AssignmentDTO, error)
	Complete(ctx context.Context, agentID, assignmentID uuid.UUID, req CompleteRequest) (*AssignmentDTO, error)
	Tracking(ctx context.Context, assignmentID uuid.UUID) (*TrackingDTO, error)
}

type orderReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error)
}

type service struct {
	repo    Repository
	orders  orderReader
	pricing *pricing.Calculator
}

// NewService builds a deliveries service with the required dependencies.
func NewService(repo Repository, orderRepo orderReader, calc *pricing.Calculator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("deliveries repository required")
	}
	if orderRepo == nil {
		return nil, fmt.Errorf("order reader required")
	}
	if calc == nil {
		return nil, fmt.Errorf("pricing calculator required")
	}
	return &service{repo: repo, orders: orderRepo, pricing: calc}, nil
}

// EnsureForOrder opens the delivery run for an order that just shipped. An
// existing assignment for the order short-circuits, so replayed transitions
// never produce a second run.
func (s *service) EnsureForOrder(ctx context.Context, tx *gorm.DB, input orders.AssignmentInput) error {
	if input.Order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	repo := s.repo.WithTx(tx)

	if _, err := repo.FindByOrderID(ctx, input.Order.ID); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignment")
	}

	assignment := s.buildAssignment(input)
	if _, err := repo.Create(ctx, assignment); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
	}
	return nil
}

// CreateForDistributor opens a run manually for one of the distributor's own
// shipped orders.
func (s *service) CreateForDistributor(ctx context.Context, distributorID uuid.UUID, req CreateAssignmentRequest) (*AssignmentDTO, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.orders.FindByID(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DistributorID != distributorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to distributor")
	}

	if _, err := s.repo.FindByOrderID(ctx, order.ID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already has a delivery assignment")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup assignment")
	}

	method := enums.PaymentMethodCashOnDelivery
	if req.PaymentMethod != nil {
		parsed, err := enums.ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
		}
		method = parsed
	}

	assignment := s.buildAssignment(orders.AssignmentInput{
		Order:         order,
		PickupAddress: req.PickupAddress,
		PickupLat:     req.PickupLatitude,
		PickupLng:     req.PickupLongitude,
	})
	assignment.PaymentMethod = method

	created, err := s.repo.Create(ctx, assignment)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create assignment")
	}
	return FromModel(created), nil
}

func (s *service) buildAssignment(input orders.AssignmentInput) *models.DeliveryAssignment {
	order := input.Order

	var quote pricing.Quote
	hasRoute := input.PickupLat != nil && input.PickupLng != nil &&
		order.DeliveryLatitude != nil && order.DeliveryLongitude != nil
	if hasRoute {
		quote = s.pricing.QuoteBetween(*input.PickupLat, *input.PickupLng, *order.DeliveryLatitude, *order.DeliveryLongitude)
	} else {
		quote = s.pricing.BaseQuote()
	}

	assignment := &models.DeliveryAssignment{
		OrderID:           order.ID,
		PickupAddress:     input.PickupAddress,
		DeliveryAddress:   order.DeliveryAddress,
		Status:            enums.DeliveryStatusAvailable,
		PaymentMethod:     enums.PaymentMethodCashOnDelivery,
		PaymentStatus:     enums.PaymentStatusPending,
		DeliveryFee:       quote.Fee,
		PickupLatitude:    input.PickupLat,
		PickupLongitude:   input.PickupLng,
		DeliveryLatitude:  order.DeliveryLatitude,
		DeliveryLongitude: order.DeliveryLongitude,
	}
	if hasRoute {
		assignment.EstimatedDistance = decimal.NullDecimal{Decimal: quote.DistanceKm, Valid: true}
		minutes := quote.EstimatedMinutes
		assignment.EstimatedTime = &minutes
	}
	return assignment
}

func (s *service) ListAvailable(ctx context.Context, params pagination.Params) (*AssignmentList, error) {
	list, err := s.repo.ListAvailable(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list available deliveries")
	}
	return list, nil
}

func (s *service) ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*AssignmentList, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByAgent(ctx, agentID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list agent deliveries")
	}
	return list, nil
}

func (s *service) ListForDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*AssignmentList, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByDistributor(ctx, distributorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list distributor deliveries")
	}
	return list, nil
}

// Accept claims an available run. The claim is one conditional update, so
// exactly one agent wins a race; the rest get Conflict.
func (s *service) Accept(ctx context.Context, agentID, assignmentID uuid.UUID) (*AssignmentDTO, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	affected, err := s.repo.Claim(ctx, assignmentID, agentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "claim assignment")
	}
	if affected == 0 {
		assignment, err := s.repo.FindByID(ctx, assignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
		}
		if assignment.AgentID != nil && *assignment.AgentID == agentID {
			// Replayed accept from the winner.
			return FromModel(assignment), nil
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "delivery already claimed")
	}

	return s.reload(ctx, assignmentID)
}

// UpdateStatus advances the run one step. Completion goes through Complete,
// which settles payment.
func (s *service) UpdateStatus(ctx context.Context, agentID, assignmentID uuid.UUID, req UpdateStatusRequest) (*AssignmentDTO, error) {
	target, err := enums.ParseDeliveryStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}
	if target == enums.DeliveryStatusCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "completion must go through complete-delivery")
	}

	assignment, err := s.ownedAssignment(ctx, agentID, assignmentID)
	if err != nil {
		return nil, err
	}

	return s.transition(ctx, assignment, target, map[string]any{"status": target})
}

// OverrideStatus lets the distributor who owns the underlying order move the
// run. The same transition table applies.
func (s *service) OverrideStatus(ctx context.Context, distributorID, assignmentID uuid.UUID, req UpdateStatusRequest) (*AssignmentDTO, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target, err := enums.ParseDeliveryStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid delivery status")
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, assignment.OrderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.DistributorID != distributorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "delivery does not belong to distributor")
	}

	return s.transition(ctx, assignment, target, map[string]any{"status": target})
}

func (s *service) transition(ctx context.Context, assignment *models.DeliveryAssignment, target enums.DeliveryStatus, updates map[string]any) (*AssignmentDTO, error) {
	if assignment.Status == target {
		return FromModel(assignment), nil
	}
	if !assignment.Status.CanTransitionTo(target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("delivery cannot move from %s to %s", assignment.Status, target))
	}

	if target == enums.DeliveryStatusDelivered {
		updates["actual_delivery_time"] = time.Now().UTC()
	}

	affected, err := s.repo.UpdateGuarded(ctx, assignment.ID, assignment.Status, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update delivery status")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery state changed concurrently")
	}

	return s.reload(ctx, assignment.ID)
}

// UpdateLocation overwrites the courier position. Positions only matter while
// the run is on the road.
func (s *service) UpdateLocation(ctx context.Context, agentID, assignmentID uuid.UUID, req UpdateLocationRequest) (*AssignmentDTO, error) {
	assignment, err := s.ownedAssignment(ctx, agentID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status != enums.DeliveryStatusInTransit {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "location updates only apply while in transit")
	}

	affected, err := s.repo.UpdateGuarded(ctx, assignment.ID, enums.DeliveryStatusInTransit, map[string]any{
		"current_latitude":  req.Latitude,
		"current_longitude": req.Longitude,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update location")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery state changed concurrently")
	}

	return s.reload(ctx, assignment.ID)
}

// Complete settles a delivered run: terminal status plus payment outcome.
func (s *service) Complete(ctx context.Context, agentID, assignmentID uuid.UUID, req CompleteRequest) (*AssignmentDTO, error) {
	paymentStatus, err := enums.ParsePaymentStatus(req.PaymentStatus)
	if err != nil || paymentStatus == enums.PaymentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment status must be paid or failed")
	}

	assignment, err := s.ownedAssignment(ctx, agentID, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.Status == enums.DeliveryStatusCompleted {
		return FromModel(assignment), nil
	}
	if assignment.Status != enums.DeliveryStatusDelivered {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "only delivered runs can be completed")
	}

	updates := map[string]any{
		"status":         enums.DeliveryStatusCompleted,
		"payment_status": paymentStatus,
	}
	if req.Notes != nil {
		updates["notes"] = req.Notes
	}

	affected, err := s.repo.UpdateGuarded(ctx, assignment.ID, enums.DeliveryStatusDelivered, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete delivery")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery state changed concurrently")
	}

	return s.reload(ctx, assignment.ID)
}

// Tracking serves the public read-only projection for order recipients.
func (s *service) Tracking(ctx context.Context, assignmentID uuid.UUID) (*TrackingDTO, error) {
	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	return trackingFromModel(assignment), nil
}

func (s *service) ownedAssignment(ctx context.Context, agentID, assignmentID uuid.UUID) (*models.DeliveryAssignment, error) {
	if agentID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	assignment, err := s.loadAssignment(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.AgentID == nil || *assignment.AgentID != agentID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "delivery does not belong to agent")
	}
	return assignment, nil
}

func (s *service) loadAssignment(ctx context.Context, assignmentID uuid.UUID) (*models.DeliveryAssignment, error) {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load assignment")
	}
	return assignment, nil
}

func (s *service) reload(ctx context.Context, assignmentID uuid.UUID) (*AssignmentDTO, error) {
	assignment, err := s.repo.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload assignment")
	}
	return FromModel(assignment), nil
}
