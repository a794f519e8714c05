package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WholesaleProduct is a distributor's catalog line item.
type WholesaleProduct struct {
	ID                   uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	DistributorID        uuid.UUID       `gorm:"column:distributor_id;type:uuid;not null;index"`
	Name                 string          `gorm:"column:name;not null"`
	Description          *string         `gorm:"column:description"`
	Category             string          `gorm:"column:category;not null"`
	Price                decimal.Decimal `gorm:"column:price;type:numeric(10,2);not null"`
	StockQuantity        int             `gorm:"column:stock_quantity;not null;default:0"`
	Unit                 string          `gorm:"column:unit;not null"`
	MinimumOrderQuantity int             `gorm:"column:minimum_order_quantity;not null;default:1"`
	IsActive             bool            `gorm:"column:is_active;not null;default:true"`
	CreatedAt            time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
