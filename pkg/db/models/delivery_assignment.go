package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/streetlink-backend/pkg/enums"
)

// DeliveryAssignment is one physical delivery run for a vendor order. AgentID
// stays null while the run is unclaimed; the claim is a conditional update so
// at most one agent ever holds it.
type DeliveryAssignment struct {
	ID                 uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID            uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	AgentID            *uuid.UUID           `gorm:"column:agent_id;type:uuid;index"`
	PickupAddress      string               `gorm:"column:pickup_address;not null"`
	DeliveryAddress    string               `gorm:"column:delivery_address;not null"`
	Status             enums.DeliveryStatus `gorm:"column:status;type:text;not null;default:'available'"`
	PaymentMethod      enums.PaymentMethod  `gorm:"column:payment_method;type:text;not null;default:'cash_on_delivery'"`
	PaymentStatus      enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	DeliveryFee        decimal.Decimal      `gorm:"column:delivery_fee;type:numeric(10,2);not null"`
	EstimatedDistance  decimal.NullDecimal  `gorm:"column:estimated_distance;type:numeric(5,2)"`
	EstimatedTime      *int                 `gorm:"column:estimated_time"`
	CurrentLatitude    *float64             `gorm:"column:current_latitude;type:numeric(10,8)"`
	CurrentLongitude   *float64             `gorm:"column:current_longitude;type:numeric(11,8)"`
	PickupLatitude     *float64             `gorm:"column:pickup_latitude;type:numeric(10,8)"`
	PickupLongitude    *float64             `gorm:"column:pickup_longitude;type:numeric(11,8)"`
	DeliveryLatitude   *float64             `gorm:"column:delivery_latitude;type:numeric(10,8)"`
	DeliveryLongitude  *float64             `gorm:"column:delivery_longitude;type:numeric(11,8)"`
	ActualDeliveryTime *time.Time           `gorm:"column:actual_delivery_time"`
	Notes              *string              `gorm:"column:notes"`
	CreatedAt          time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
