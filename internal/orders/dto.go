package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/streetlink-backend/internal/cart"
	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
)

// CheckoutRequest is the payload for POST /api/vendor/checkout and
// POST /api/vendor/orders. Prices are never accepted from the client.
type CheckoutRequest struct {
	Items             []cart.Item `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress   string      `json:"delivery_address" validate:"required,max=500"`
	DeliveryLatitude  *float64    `json:"delivery_latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	DeliveryLongitude *float64    `json:"delivery_longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	Notes             *string     `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// UpdateStatusRequest drives PATCH /api/distributor/orders/{orderId}. Pickup
// fields only matter on the transition to shipped, where they seed the
// delivery assignment.
type UpdateStatusRequest struct {
	Status          string   `json:"status" validate:"required"`
	PickupAddress   *string  `json:"pickup_address,omitempty" validate:"omitempty,max=500"`
	PickupLatitude  *float64 `json:"pickup_latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	PickupLongitude *float64 `json:"pickup_longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

// OrderItemDTO is the transport shape for one order line.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
}

// OrderDTO is the transport shape for a vendor order.
type OrderDTO struct {
	ID                    uuid.UUID         `json:"id"`
	VendorID              uuid.UUID         `json:"vendor_id"`
	DistributorID         uuid.UUID         `json:"distributor_id"`
	OrderNumber           string            `json:"order_number"`
	Status                enums.OrderStatus `json:"status"`
	TotalAmount           decimal.Decimal   `json:"total_amount"`
	DeliveryAddress       string            `json:"delivery_address"`
	DeliveryLatitude      *float64          `json:"delivery_latitude,omitempty"`
	DeliveryLongitude     *float64          `json:"delivery_longitude,omitempty"`
	EstimatedDeliveryDate *time.Time        `json:"estimated_delivery_date,omitempty"`
	Notes                 *string           `json:"notes,omitempty"`
	Items                 []OrderItemDTO    `json:"items"`
	CreatedAt             time.Time         `json:"created_at"`
	UpdatedAt             time.Time         `json:"updated_at"`
}

// OrderList wraps paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

// CheckoutResponse returns all orders created from a multi-distributor cart.
type CheckoutResponse struct {
	Orders []OrderDTO `json:"orders"`
}

func FromModel(o *models.VendorOrder) *OrderDTO {
	if o == nil {
		return nil
	}

	items := make([]OrderItemDTO, 0, len(o.Items))
	for i := range o.Items {
		item := o.Items[i]
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			TotalPrice:  item.TotalPrice,
		})
	}

	return &OrderDTO{
		ID:                    o.ID,
		VendorID:              o.VendorID,
		DistributorID:         o.DistributorID,
		OrderNumber:           o.OrderNumber,
		Status:                o.Status,
		TotalAmount:           o.TotalAmount,
		DeliveryAddress:       o.DeliveryAddress,
		DeliveryLatitude:      o.DeliveryLatitude,
		DeliveryLongitude:     o.DeliveryLongitude,
		EstimatedDeliveryDate: o.EstimatedDeliveryDate,
		Notes:                 o.Notes,
		Items:                 items,
		CreatedAt:             o.CreatedAt,
		UpdatedAt:             o.UpdatedAt,
	}
}

func fromModels(rows []models.VendorOrder) []OrderDTO {
	dtos := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
