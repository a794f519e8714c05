package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

// Service defines catalog operations for distributors and browsing vendors.
type Service interface {
	Create(ctx context.Context, distributorID uuid.UUID, req CreateProductRequest) (*ProductDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListMine(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*ProductList, error)
	Browse(ctx context.Context, params pagination.Params, filters BrowseFilters) (*ProductList, error)
	Update(ctx context.Context, distributorID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error)
	Delete(ctx context.Context, distributorID, productID uuid.UUID) error
}

type service struct {
	repo Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, distributorID uuid.UUID, req CreateProductRequest) (*ProductDTO, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	minQty := req.MinimumOrderQuantity
	if minQty < 1 {
		minQty = 1
	}

	product := &models.WholesaleProduct{
		DistributorID:        distributorID,
		Name:                 strings.TrimSpace(req.Name),
		Description:          req.Description,
		Category:             strings.TrimSpace(req.Category),
		Price:                price,
		StockQuantity:        req.StockQuantity,
		Unit:                 strings.TrimSpace(req.Unit),
		MinimumOrderQuantity: minQty,
		IsActive:             isActive,
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return FromModel(product), nil
}

func (s *service) ListMine(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*ProductList, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListByDistributor(ctx, distributorID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return list, nil
}

func (s *service) Browse(ctx context.Context, params pagination.Params, filters BrowseFilters) (*ProductList, error) {
	list, err := s.repo.ListActive(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse products")
	}
	return list, nil
}

func (s *service) Update(ctx context.Context, distributorID, productID uuid.UUID, req UpdateProductRequest) (*ProductDTO, error) {
	product, err := s.ownedProduct(ctx, distributorID, productID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		updates["description"] = req.Description
	}
	if req.Category != nil {
		updates["category"] = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		updates["price"] = price
	}
	if req.StockQuantity != nil {
		updates["stock_quantity"] = *req.StockQuantity
	}
	if req.Unit != nil {
		updates["unit"] = strings.TrimSpace(*req.Unit)
	}
	if req.MinimumOrderQuantity != nil {
		updates["minimum_order_quantity"] = *req.MinimumOrderQuantity
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return FromModel(product), nil
	}

	if err := s.repo.Update(ctx, product.ID, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}

	fresh, err := s.repo.FindByID(ctx, product.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload product")
	}
	return FromModel(fresh), nil
}

func (s *service) Delete(ctx context.Context, distributorID, productID uuid.UUID) error {
	product, err := s.ownedProduct(ctx, distributorID, productID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, product.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) ownedProduct(ctx context.Context, distributorID, productID uuid.UUID) (*models.WholesaleProduct, error) {
	if distributorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.DistributorID != distributorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "product does not belong to distributor")
	}
	return product, nil
}

// parsePrice normalizes a decoded price. Malformed values never get here;
// decimal rejects them during JSON decoding.
func parsePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() || price.IsZero() {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	return price.Round(2), nil
}
