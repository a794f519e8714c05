package deliveries

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a deliveries repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, assignment *models.DeliveryAssignment) (*models.DeliveryAssignment, error) {
	if err := r.db.WithContext(ctx).Create(assignment).Error; err != nil {
		return nil, err
	}
	return assignment, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DeliveryAssignment, error) {
	var assignment models.DeliveryAssignment
	if err := r.db.WithContext(ctx).First(&assignment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.DeliveryAssignment, error) {
	var assignment models.DeliveryAssignment
	if err := r.db.WithContext(ctx).First(&assignment, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *repository) ListAvailable(ctx context.Context, params pagination.Params) (*AssignmentList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DeliveryAssignment{}).
		Where("status = ? AND agent_id IS NULL", enums.DeliveryStatusAvailable)
	return r.listPage(query, params)
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*AssignmentList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DeliveryAssignment{}).
		Where("agent_id = ?", agentID)
	return r.listPage(query, params)
}

func (r *repository) ListByDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*AssignmentList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.DeliveryAssignment{}).
		Joins("JOIN vendor_orders ON vendor_orders.id = delivery_assignments.order_id").
		Where("vendor_orders.distributor_id = ?", distributorID)
	return r.listPage(query, params)
}

func (r *repository) listPage(query *gorm.DB, params pagination.Params) (*AssignmentList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(delivery_assignments.created_at < ?) OR (delivery_assignments.created_at = ? AND delivery_assignments.id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.DeliveryAssignment
	err = query.
		Order("delivery_assignments.created_at DESC, delivery_assignments.id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &AssignmentList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	list.Assignments = fromModels(rows)
	return list, nil
}

func (r *repository) Claim(ctx context.Context, id, agentID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DeliveryAssignment{}).
		Where("id = ? AND status = ? AND agent_id IS NULL", id, enums.DeliveryStatusAvailable).
		Updates(map[string]any{
			"agent_id": agentID,
			"status":   enums.DeliveryStatusAssigned,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdateGuarded(ctx context.Context, id uuid.UUID, expected enums.DeliveryStatus, updates map[string]any) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.DeliveryAssignment{}).
		Where("id = ? AND status = ?", id, expected).
		Updates(updates)
	return res.RowsAffected, res.Error
}
