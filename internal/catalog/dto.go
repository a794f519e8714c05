package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
)

// ProductDTO is the transport shape for a catalog line item.
type ProductDTO struct {
	ID                   uuid.UUID       `json:"id"`
	DistributorID        uuid.UUID       `json:"distributor_id"`
	Name                 string          `json:"name"`
	Description          *string         `json:"description,omitempty"`
	Category             string          `json:"category"`
	Price                decimal.Decimal `json:"price"`
	StockQuantity        int             `json:"stock_quantity"`
	Unit                 string          `json:"unit"`
	MinimumOrderQuantity int             `json:"minimum_order_quantity"`
	IsActive             bool            `json:"is_active"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// CreateProductRequest is the payload for POST /api/distributor/products.
// Price decodes from either a JSON number or a numeric string.
type CreateProductRequest struct {
	Name                 string          `json:"name" validate:"required,max=200"`
	Description          *string         `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category             string          `json:"category" validate:"required,max=100"`
	Price                decimal.Decimal `json:"price" validate:"required"`
	StockQuantity        int             `json:"stock_quantity" validate:"gte=0"`
	Unit                 string          `json:"unit" validate:"required,max=50"`
	MinimumOrderQuantity int             `json:"minimum_order_quantity" validate:"gte=1"`
	IsActive             *bool           `json:"is_active,omitempty"`
}

// UpdateProductRequest carries partial updates for a catalog item. Nil fields
// are left untouched.
type UpdateProductRequest struct {
	Name                 *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description          *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category             *string          `json:"category,omitempty" validate:"omitempty,min=1,max=100"`
	Price                *decimal.Decimal `json:"price,omitempty"`
	StockQuantity        *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	Unit                 *string          `json:"unit,omitempty" validate:"omitempty,min=1,max=50"`
	MinimumOrderQuantity *int             `json:"minimum_order_quantity,omitempty" validate:"omitempty,gte=1"`
	IsActive             *bool            `json:"is_active,omitempty"`
}

// BrowseFilters describe the query params supported by the vendor browse list.
type BrowseFilters struct {
	Category      string
	Query         string
	DistributorID *uuid.UUID
}

// ProductList wraps the paginated products plus the next page cursor.
type ProductList struct {
	Products   []ProductDTO `json:"products"`
	NextCursor string       `json:"next_cursor,omitempty"`
}

func FromModel(p *models.WholesaleProduct) *ProductDTO {
	if p == nil {
		return nil
	}

	return &ProductDTO{
		ID:                   p.ID,
		DistributorID:        p.DistributorID,
		Name:                 p.Name,
		Description:          p.Description,
		Category:             p.Category,
		Price:                p.Price,
		StockQuantity:        p.StockQuantity,
		Unit:                 p.Unit,
		MinimumOrderQuantity: p.MinimumOrderQuantity,
		IsActive:             p.IsActive,
		CreatedAt:            p.CreatedAt,
		UpdatedAt:            p.UpdatedAt,
	}
}

func fromModels(items []models.WholesaleProduct) []ProductDTO {
	dtos := make([]ProductDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *FromModel(&items[i]))
	}
	return dtos
}
