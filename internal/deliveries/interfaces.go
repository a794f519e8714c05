package deliveries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

// Repository defines persistence operations for delivery assignments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, assignment *models.DeliveryAssignment) (*models.DeliveryAssignment, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAssignment, error)
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, error)
	ListAvailable(ctx context.Context, params pagination.Params) (*AssignmentList, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*AssignmentList, error)
	ListByDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*AssignmentList, error)
	// Claim atomically binds an unclaimed available assignment to the agent.
	// The returned row count is zero when another agent already holds it.
	Claim(ctx context.Context, id, agentID uuid.UUID) (int64, error)
	// UpdateGuarded applies updates only while the row still holds the
	// expected status; zero rows means the state moved underneath us.
	UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.DeliveryStatus, updates map[string]any) (int64, error)
}
