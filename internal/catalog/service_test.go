package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
	"github.com/angelmondragon/streetlink-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	products map[uuid.UUID]*models.WholesaleProduct
	updates  map[string]any
	deleted  []uuid.UUID
}

func newStubCatalogRepo() *stubCatalogRepo {
	return &stubCatalogRepo{products: map[uuid.UUID]*models.WholesaleProduct{}}
}

func (s *stubCatalogRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) Create(ctx context.Context, product *models.WholesaleProduct) (*models.WholesaleProduct, error) {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	s.products[product.ID] = product
	return product, nil
}

func (s *stubCatalogRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.WholesaleProduct, error) {
	if p, ok := s.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindManyByID(ctx context.Context, ids []uuid.UUID) ([]models.WholesaleProduct, error) {
	var out []models.WholesaleProduct
	for _, id := range ids {
		if p, ok := s.products[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubCatalogRepo) ListByDistributor(ctx context.Context, distributorID uuid.UUID, params pagination.Params) (*ProductList, error) {
	var out []models.WholesaleProduct
	for _, p := range s.products {
		if p.DistributorID == distributorID {
			out = append(out, *p)
		}
	}
	return &ProductList{Products: fromModels(out)}, nil
}

func (s *stubCatalogRepo) ListActive(ctx context.Context, params pagination.Params, filters BrowseFilters) (*ProductList, error) {
	var out []models.WholesaleProduct
	for _, p := range s.products {
		if p.IsActive {
			out = append(out, *p)
		}
	}
	return &ProductList{Products: fromModels(out)}, nil
}

func (s *stubCatalogRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	s.updates = updates
	p, ok := s.products[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if v, ok := updates["name"].(string); ok {
		p.Name = v
	}
	if v, ok := updates["stock_quantity"].(int); ok {
		p.StockQuantity = v
	}
	return nil
}

func (s *stubCatalogRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.products, id)
	return nil
}

func (s *stubCatalogRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	p, ok := s.products[id]
	if !ok || p.StockQuantity < qty {
		return 0, nil
	}
	p.StockQuantity -= qty
	return 1, nil
}

func (s *stubCatalogRepo) RestockQuantity(ctx context.Context, id uuid.UUID, qty int) error {
	if p, ok := s.products[id]; ok {
		p.StockQuantity += qty
	}
	return nil
}

func TestCreateProductDefaultsAndPrice(t *testing.T) {
	svc, _ := NewService(newStubCatalogRepo())
	distributorID := uuid.New()

	dto, err := svc.Create(context.Background(), distributorID, CreateProductRequest{
		Name:          "  Corn Masa 20kg ",
		Category:      "grains",
		Price:         decimal.NewFromFloat(42.5),
		StockQuantity: 100,
		Unit:          "sack",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Name != "Corn Masa 20kg" {
		t.Errorf("name not trimmed: %q", dto.Name)
	}
	if dto.Price.StringFixed(2) != "42.50" {
		t.Errorf("unexpected price %s", dto.Price)
	}
	if dto.MinimumOrderQuantity != 1 {
		t.Errorf("expected min order qty default 1, got %d", dto.MinimumOrderQuantity)
	}
	if !dto.IsActive {
		t.Error("expected product to default to active")
	}
}

func TestCreateProductRejectsBadPrice(t *testing.T) {
	svc, _ := NewService(newStubCatalogRepo())

	for _, price := range []decimal.Decimal{decimal.NewFromInt(-3), decimal.Zero} {
		_, err := svc.Create(context.Background(), uuid.New(), CreateProductRequest{
			Name: "x", Category: "y", Price: price, Unit: "kg",
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Errorf("price %s: expected validation error, got %v", price, err)
		}
	}
}

func TestUpdateProductEnforcesOwnership(t *testing.T) {
	repo := newStubCatalogRepo()
	svc, _ := NewService(repo)
	owner := uuid.New()

	dto, err := svc.Create(context.Background(), owner, CreateProductRequest{
		Name: "Oil Drum", Category: "oils", Price: decimal.NewFromInt(900), StockQuantity: 5, Unit: "drum",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	name := "Oil Drum 200L"
	_, err = svc.Update(context.Background(), uuid.New(), dto.ID, UpdateProductRequest{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden for foreign distributor, got %v", err)
	}

	updated, err := svc.Update(context.Background(), owner, dto.ID, UpdateProductRequest{Name: &name})
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if updated.Name != "Oil Drum 200L" {
		t.Errorf("name not updated: %q", updated.Name)
	}
}

func TestDeleteProductNotFound(t *testing.T) {
	svc, _ := NewService(newStubCatalogRepo())

	err := svc.Delete(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
