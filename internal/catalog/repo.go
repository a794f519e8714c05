package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

// Repository defines persistence operations for the wholesale catalog.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, product *models.WholesaleProduct) (*models.WholesaleProduct, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleProduct, error)
	FindManyByID(ctx context.Context, ids []uuid.UUID) ([]models.WholesaleProduct, error)
	ListByDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*ProductList, error)
	ListActive(ctx context.Context, params pagination.Params, filters BrowseFilters) (*ProductList, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	RestockQuantity(ctx context.Context, id uuid.UUID, qty int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, product *models.WholesaleProduct) (*models.WholesaleProduct, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleProduct, error) {
	var product models.WholesaleProduct
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindManyByID(ctx context.Context, ids []uuid.UUID) ([]models.WholesaleProduct, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var products []models.WholesaleProduct
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListByDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*ProductList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.WholesaleProduct{}).
		Where("distributor_id = ?", distributorID)

	return r.listPage(query, params)
}

func (r *repository) ListActive(ctx context.Context, params pagination.Params, filters BrowseFilters) (*ProductList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.WholesaleProduct{}).
		Where("is_active = ?", true)

	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.DistributorID != nil {
		query = query.Where("distributor_id = ?", *filters.DistributorID)
	}
	if q := strings.TrimSpace(filters.Query); q != "" {
		pattern := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(category) LIKE ?", pattern, pattern)
	}

	return r.listPage(query, params)
}

func (r *repository) listPage(query *gorm.DB, params pagination.Params) (*ProductList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.WholesaleProduct
	err = query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ProductList{}
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	list.Products = fromModels(rows)
	return list, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.WholesaleProduct{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Delete(&models.WholesaleProduct{}, "id = ?", id).Error
}

// DecrementStock subtracts qty only when enough stock remains; the returned
// row count is zero when the guard fails.
func (r *repository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.WholesaleProduct{}).
		Where("id = ? AND stock_quantity >= ?", id, qty).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", qty))
	return res.RowsAffected, res.Error
}

// RestockQuantity returns qty units to the shelf. A missing product is not an
// error; it was deleted after the order snapshotted its line items.
func (r *repository) RestockQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	return r.db.WithContext(ctx).
		Model(&models.WholesaleProduct{}).
		Where("id = ?", id).
		UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", qty)).Error
}
