package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

// Repository defines persistence operations for vendor orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.VendorOrder) (*models.VendorOrder, error)
	CreateOrderItems(ctx context.Context, items []models.VendorOrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.VendorOrder, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time) ([]models.VendorOrder, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListByDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*OrderList, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type userReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AssignmentInput carries everything the delivery layer needs to open a run
// for a shipped order.
type AssignmentInput struct {
	Order         *models.VendorOrder
	Distributor   *models.User
	PickupAddress string
	PickupLat     *float64
	PickupLng     *float64
}

// AssignmentCreator opens the delivery assignment when an order ships. The
// call is idempotent per order.
type AssignmentCreator interface {
	EnsureForOrder(ctx context.Context, tx *gorm.DB, input AssignmentInput) error
}
