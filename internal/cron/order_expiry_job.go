package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/streetlink-backend/internal/catalog"
	"github.com/angelmondragon/streetlink-backend/internal/orders"
	"github.com/angelmondragon/streetlink-backend/pkg/enums"
	"github.com/angelmondragon/streetlink-backend/pkg/logger"
)

const defaultOrderTTL = 48 * time.Hour

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderExpiryJobParams configure the stale order reaper.
type OrderExpiryJobParams struct {
	Logger  *logger.Logger
	DB      txRunner
	Orders  orders.Repository
	Catalog catalog.Repository
	TTL     time.Duration
}

// NewOrderExpiryJob builds the job that cancels pending orders no distributor
// ever confirmed and returns their units to stock.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultOrderTTL
	}
	return &orderExpiryJob{
		logg:    params.Logger,
		db:      params.DB,
		orders:  params.Orders,
		catalog: params.Catalog,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg    *logger.Logger
	db      txRunner
	orders  orders.Repository
	catalog catalog.Repository
	ttl     time.Duration
	now     func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	stale, err := j.orders.FindPendingBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("query stale pending orders: %w", err)
	}
	count := 0
	for _, order := range stale {
		if err := j.expireOrder(ctx, order.ID); err != nil {
			return fmt.Errorf("expire order %s: %w", order.ID, err)
		}
		count++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "cutoff": cutoff})
	j.logg.Info(logCtx, "stale order sweep complete")
	return nil
}

// expireOrder re-checks the status inside the transaction; the distributor
// may have confirmed between the sweep query and the cancel.
func (j *orderExpiryJob) expireOrder(ctx context.Context, orderID uuid.UUID) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		ordersTx := j.orders.WithTx(tx)
		catalogTx := j.catalog.WithTx(tx)

		current, err := ordersTx.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if current.Status != enums.OrderStatusPending {
			return nil
		}
		for _, item := range current.Items {
			if item.ProductID == nil {
				continue
			}
			if err := catalogTx.RestockQuantity(ctx, *item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return ordersTx.UpdateStatus(ctx, orderID, enums.OrderStatusCancelled)
	})
}
