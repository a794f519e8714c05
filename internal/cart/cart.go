package cart

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/streetlink-backend/pkg/errors"
)

// Item is one requested product line before pricing.
type Item struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

// Line is a priced cart line. Unit price always comes from the current
// catalog row, never from the client.
type Line struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
	UnitPrice   decimal.Decimal
	TotalPrice  decimal.Decimal
}

// Group is the per-distributor slice of a cart; each group becomes one order.
type Group struct {
	DistributorID uuid.UUID
	Lines         []Line
	Total         decimal.Decimal
}

// BuildGroups prices the requested items against the catalog and partitions
// them per distributor. Inactive products, unknown products, quantities under
// the minimum order and quantities over stock are all rejected.
func BuildGroups(items []Item, products map[uuid.UUID]*models.WholesaleProduct) ([]Group, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	merged := map[uuid.UUID]int{}
	order := []uuid.UUID{}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
		}
		if _, seen := merged[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		merged[item.ProductID] += item.Quantity
	}

	grouped := map[uuid.UUID]*Group{}
	for _, productID := range order {
		qty := merged[productID]

		product, ok := products[productID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
		}
		if !product.IsActive {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is no longer available", product.Name))
		}
		if qty < product.MinimumOrderQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %q requires a minimum of %d units", product.Name, product.MinimumOrderQuantity))
		}
		if qty > product.StockQuantity {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("product %q has only %d units in stock", product.Name, product.StockQuantity))
		}

		line := Line{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    qty,
			UnitPrice:   product.Price,
			TotalPrice:  product.Price.Mul(decimal.NewFromInt(int64(qty))).Round(2),
		}

		group, ok := grouped[product.DistributorID]
		if !ok {
			group = &Group{DistributorID: product.DistributorID, Total: decimal.Zero}
			grouped[product.DistributorID] = group
		}
		group.Lines = append(group.Lines, line)
		group.Total = group.Total.Add(line.TotalPrice)
	}

	groups := make([]Group, 0, len(grouped))
	for _, group := range grouped {
		groups = append(groups, *group)
	}
	// Stable output keeps order creation deterministic across retries.
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].DistributorID.String() < groups[j].DistributorID.String()
	})
	return groups, nil
}
