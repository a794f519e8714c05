package deliveries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/streetlink-backend/pkg/db/models"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
)

// CreateAssignmentRequest drives POST /api/distributor/deliveries for orders
// that shipped without an automatic assignment.
type CreateAssignmentRequest struct {
	OrderID         uuid.UUID `json:"order_id" validate:"required"`
	PickupAddress   string    `json:"pickup_address" validate:"required,max=500"`
	PickupLatitude  *float64  `json:"pickup_latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	PickupLongitude *float64  `json:"pickup_longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
	PaymentMethod   *string   `json:"payment_method,omitempty"`
}

// UpdateStatusRequest advances the delivery lifecycle one step.
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// UpdateLocationRequest overwrites the courier's current position.
type UpdateLocationRequest struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// CompleteRequest settles a delivered run.
type CompleteRequest struct {
	PaymentStatus string  `json:"payment_status" validate:"required,oneof=paid failed"`
	Notes         *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// AssignmentDTO is the transport shape for a delivery assignment.
type AssignmentDTO struct {
	ID                 uuid.UUID            `json:"id"`
	OrderID            uuid.UUID            `json:"order_id"`
	AgentID            *uuid.UUID           `json:"agent_id,omitempty"`
	PickupAddress      string               `json:"pickup_address"`
	DeliveryAddress    string               `json:"delivery_address"`
	Status             enums.DeliveryStatus `json:"status"`
	PaymentMethod      enums.PaymentMethod  `json:"payment_method"`
	PaymentStatus      enums.PaymentStatus  `json:"payment_status"`
	DeliveryFee        decimal.Decimal      `json:"delivery_fee"`
	EstimatedDistance  *decimal.Decimal     `json:"estimated_distance,omitempty"`
	EstimatedTime      *int                 `json:"estimated_time,omitempty"`
	CurrentLatitude    *float64             `json:"current_latitude,omitempty"`
	CurrentLongitude   *float64             `json:"current_longitude,omitempty"`
	PickupLatitude     *float64             `json:"pickup_latitude,omitempty"`
	PickupLongitude    *float64             `json:"pickup_longitude,omitempty"`
	DeliveryLatitude   *float64             `json:"delivery_latitude,omitempty"`
	DeliveryLongitude  *float64             `json:"delivery_longitude,omitempty"`
	ActualDeliveryTime *time.Time           `json:"actual_delivery_time,omitempty"`
	Notes              *string              `json:"notes,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
}

// AssignmentList wraps paginated assignments plus the next page cursor.
type AssignmentList struct {
	Assignments []AssignmentDTO `json:"assignments"`
	NextCursor  string          `json:"next_cursor,omitempty"`
}

// TrackingDTO is the unauthenticated projection served to order recipients.
// It deliberately omits agent identity and payment details.
type TrackingDTO struct {
	ID                uuid.UUID            `json:"id"`
	Status            enums.DeliveryStatus `json:"status"`
	PickupAddress     string               `json:"pickup_address"`
	DeliveryAddress   string               `json:"delivery_address"`
	CurrentLatitude   *float64             `json:"current_latitude,omitempty"`
	CurrentLongitude  *float64             `json:"current_longitude,omitempty"`
	EstimatedDistance *decimal.Decimal     `json:"estimated_distance,omitempty"`
	EstimatedTime     *int                 `json:"estimated_time,omitempty"`
	UpdatedAt         time.Time            `json:"updated_at"`
}

func FromModel(a *models.DeliveryAssignment) *AssignmentDTO {
	if a == nil {
		return nil
	}

	var distance *decimal.Decimal
	if a.EstimatedDistance.Valid {
		d := a.EstimatedDistance.Decimal
		distance = &d
	}

	return &AssignmentDTO{
		ID:                 a.ID,
		OrderID:            a.OrderID,
		AgentID:            a.AgentID,
		PickupAddress:      a.PickupAddress,
		DeliveryAddress:    a.DeliveryAddress,
		Status:             a.Status,
		PaymentMethod:      a.PaymentMethod,
		PaymentStatus:      a.PaymentStatus,
		DeliveryFee:        a.DeliveryFee,
		EstimatedDistance:  distance,
		EstimatedTime:      a.EstimatedTime,
		CurrentLatitude:    a.CurrentLatitude,
		CurrentLongitude:   a.CurrentLongitude,
		PickupLatitude:     a.PickupLatitude,
		PickupLongitude:    a.PickupLongitude,
		DeliveryLatitude:   a.DeliveryLatitude,
		DeliveryLongitude:  a.DeliveryLongitude,
		ActualDeliveryTime: a.ActualDeliveryTime,
		Notes:              a.Notes,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

func trackingFromModel(a *models.DeliveryAssignment) *TrackingDTO {
	dto := FromModel(a)
	return &TrackingDTO{
		ID:                dto.ID,
		Status:            dto.Status,
		PickupAddress:     dto.PickupAddress,
		DeliveryAddress:   dto.DeliveryAddress,
		CurrentLatitude:   dto.CurrentLatitude,
		CurrentLongitude:  dto.CurrentLongitude,
		EstimatedDistance: dto.EstimatedDistance,
		EstimatedTime:     dto.EstimatedTime,
		UpdatedAt:         dto.UpdatedAt,
	}
}

func fromModels(rows []models.DeliveryAssignment) []AssignmentDTO {
	dtos := make([]AssignmentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
