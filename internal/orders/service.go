package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/internal/cart"
	"github.com/angelmondragon/streetlink-backend/internal/catalog"
	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

// Service defines vendor order operations.
type Service interface {
	Checkout(ctx context.Context, vendorID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error)
	Create(ctx context.Context, vendorID uuid.UUID, req CheckoutRequest) (*OrderDTO, error)
	ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListForDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*OrderList, error)
	Get(ctx context.Context, actorID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, distributorID, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error)
}

type service struct {
	repo        Repository
	catalog     catalog.Repository
	users       userReader
	tx          txRunner
	assignments AssignmentCreator
}

// NewService builds a vendor order service with the required dependencies.
func NewService(repo Repository, catalogRepo catalog.Repository, users userReader, tx txRunner, assignments AssignmentCreator) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if users == nil {
		return nil, fmt.Errorf("user reader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if assignments == nil {
		return nil, fmt.Errorf("assignment creator required")
	}
	return &service{
		repo:        repo,
		catalog:     catalogRepo,
		users:       users,
		tx:          tx,
		assignments: assignments,
	}, nil
}

// Checkout turns a priced cart into one order per distributor. All orders,
// their items and the stock decrements commit or roll back together.
func (s *service) Checkout(ctx context.Context, vendorID uuid.UUID, req CheckoutRequest) (*CheckoutResponse, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	groups, err := s.priceCart(ctx, req)
	if err != nil {
		return nil, err
	}

	created, err := s.commitGroups(ctx, vendorID, req, groups)
	if err != nil {
		return nil, err
	}

	return &CheckoutResponse{Orders: created}, nil
}

// Create places a single-distributor order. Carts spanning multiple
// distributors must go through checkout; they are rejected before anything
// is written.
func (s *service) Create(ctx context.Context, vendorID uuid.UUID, req CheckoutRequest) (*OrderDTO, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	groups, err := s.priceCart(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(groups) != 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"items span multiple distributors; use checkout instead")
	}

	created, err := s.commitGroups(ctx, vendorID, req, groups)
	if err != nil {
		return nil, err
	}

	return &created[0], nil
}

// priceCart re-prices the requested items from the catalog and groups them by
// distributor. Client-sent prices never enter the totals.
func (s *service) priceCart(ctx context.Context, req CheckoutRequest) ([]cart.Group, error) {
	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	rows, err := s.catalog.FindManyByID(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	products := make(map[uuid.UUID]*models.WholesaleProduct, len(rows))
	for i := range rows {
		products[rows[i].ID] = &rows[i]
	}

	return cart.BuildGroups(req.Items, products)
}

func (s *service) commitGroups(ctx context.Context, vendorID uuid.UUID, req CheckoutRequest, groups []cart.Group) ([]OrderDTO, error) {
	var created []OrderDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		catalogRepo := s.catalog.WithTx(tx)

		for _, group := range groups {
			for _, line := range group.Lines {
				affected, err := catalogRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
				if err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
				}
				if affected == 0 {
					return pkgerrors.New(pkgerrors.CodeConflict,
						fmt.Sprintf("product %q sold out before the order could be placed", line.ProductName))
				}
			}

			order := &models.VendorOrder{
				VendorID:          vendorID,
				DistributorID:     group.DistributorID,
				OrderNumber:       GenerateOrderNumber(),
				Status:            enums.OrderStatusPending,
				TotalAmount:       group.Total,
				DeliveryAddress:   req.DeliveryAddress,
				DeliveryLatitude:  req.DeliveryLatitude,
				DeliveryLongitude: req.DeliveryLongitude,
				Notes:             req.Notes,
			}
			if _, err := repo.CreateOrder(ctx, order); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
			}

			items := make([]models.VendorOrderItem, 0, len(group.Lines))
			for _, line := range group.Lines {
				productID := line.ProductID
				items = append(items, models.VendorOrderItem{
					OrderID:     order.ID,
					ProductID:   &productID,
					ProductName: line.ProductName,
					Quantity:    line.Quantity,
					UnitPrice:   line.UnitPrice,
					TotalPrice:  line.TotalPrice,
				})
			}
			if err := repo.CreateOrderItems(ctx, items); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
			}

			order.Items = items
			created = append(created, *FromModel(order))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *service) ListForVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if vendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByVendor(ctx, vendorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendor orders")
	}
	return list, nil
}

func (s *service) ListForDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*OrderList, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByDistributor(ctx, distributorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list distributor orders")
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, actorID uuid.UUID, role enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}

	switch role {
	case enums.UserRoleStreetVendor:
		if order.VendorID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to vendor")
		}
	case enums.UserRoleDistributor:
		if order.DistributorID != actorID {
			return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to distributor")
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot read orders")
	}

	return FromModel(order), nil
}

// UpdateStatus advances an order one step along its lifecycle. The move to
// shipped opens a delivery assignment in the same transaction.
func (s *service) UpdateStatus(ctx context.Context, distributorID, orderID uuid.UUID, req UpdateStatusRequest) (*OrderDTO, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	target, err := enums.ParseOrderStatus(req.Status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
	}

	var updated *models.VendorOrder
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.loadOrder(ctx, repo, orderID)
		if err != nil {
			return err
		}
		if order.DistributorID != distributorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to distributor")
		}
		if order.Status == target {
			updated = order
			return nil
		}
		if !canTransitionOrder(order.Status, target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("order cannot move from %s to %s", order.Status, target))
		}

		if err := repo.UpdateStatus(ctx, order.ID, target); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
		}
		order.Status = target

		if target == enums.OrderStatusShipped {
			distributor, err := s.users.FindByID(ctx, order.DistributorID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load distributor")
			}
			input := AssignmentInput{
				Order:         order,
				Distributor:   distributor,
				PickupAddress: pickupAddress(req, distributor),
				PickupLat:     req.PickupLatitude,
				PickupLng:     req.PickupLongitude,
			}
			if err := s.assignments.EnsureForOrder(ctx, tx, input); err != nil {
				return err
			}
		}

		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return FromModel(updated), nil
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.VendorOrder, error) {
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

var orderFlow = []enums.OrderStatus{
	enums.OrderStatusPending,
	enums.OrderStatusConfirmed,
	enums.OrderStatusPacked,
	enums.OrderStatusShipped,
	enums.OrderStatusDelivered,
}

func orderRank(status enums.OrderStatus) int {
	for i, candidate := range orderFlow {
		if candidate == status {
			return i
		}
	}
	return -1
}

// canTransitionOrder permits single forward steps along the fulfillment flow.
// Cancellation is open until the order ships.
func canTransitionOrder(from, to enums.OrderStatus) bool {
	if to == enums.OrderStatusCancelled {
		switch from {
		case enums.OrderStatusPending, enums.OrderStatusConfirmed, enums.OrderStatusPacked:
			return true
		}
		return false
	}

	fromRank := orderRank(from)
	toRank := orderRank(to)
	if fromRank < 0 || toRank < 0 {
		return false
	}
	return toRank == fromRank+1
}

func pickupAddress(req UpdateStatusRequest, distributor *models.User) string {
	if req.PickupAddress != nil && *req.PickupAddress != "" {
		return *req.PickupAddress
	}
	if distributor != nil && distributor.CompanyName != nil && *distributor.CompanyName != "" {
		return *distributor.CompanyName
	}
	return "Distributor pickup point"
}
