package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/streetlink-backend/pkg/enums"
)

// VendorOrder is a street vendor's purchase from a single distributor.
type VendorOrder struct {
	ID                    uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VendorID              uuid.UUID         `gorm:"column:vendor_id;type:uuid;not null;index"`
	DistributorID         uuid.UUID         `gorm:"column:distributor_id;type:uuid;not null;index"`
	OrderNumber           string            `gorm:"column:order_number;not null;uniqueIndex"`
	Status                enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	TotalAmount           decimal.Decimal   `gorm:"column:total_amount;type:numeric(10,2);not null"`
	DeliveryAddress       string            `gorm:"column:delivery_address;not null"`
	DeliveryLatitude      *float64          `gorm:"column:delivery_latitude;type:numeric(10,8)"`
	DeliveryLongitude     *float64          `gorm:"column:delivery_longitude;type:numeric(11,8)"`
	EstimatedDeliveryDate *time.Time        `gorm:"column:estimated_delivery_date"`
	Notes                 *string           `gorm:"column:notes"`
	Items                 []VendorOrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt             time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
