package pricing

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/streetlink-backend/pkg/config"
	"github.com/angelmondragon/streetlink-backend/pkg/geo"
)

// Quote is the computed cost and timing estimate for one delivery run.
type Quote struct {
	Fee        decimal.Decimal
	DistanceKm decimal.Decimal
	// EstimatedMinutes is the door-to-door travel estimate, rounded up.
	EstimatedMinutes int
}

// Calculator prices delivery runs from configured rates.
type Calculator struct {
	baseFee  decimal.Decimal
	perKmFee decimal.Decimal
	speed    float64
}

// NewCalculator validates the configured rates and returns a calculator.
func NewCalculator(cfg config.DeliveryConfig) (*Calculator, error) {
	baseFee, err := decimal.NewFromString(cfg.BaseFee)
	if err != nil {
		return nil, fmt.Errorf("invalid base fee %q: %w", cfg.BaseFee, err)
	}
	perKmFee, err := decimal.NewFromString(cfg.PerKmFee)
	if err != nil {
		return nil, fmt.Errorf("invalid per-km fee %q: %w", cfg.PerKmFee, err)
	}
	if cfg.AvgSpeedKmph <= 0 {
		return nil, fmt.Errorf("avg speed must be positive, got %v", cfg.AvgSpeedKmph)
	}
	return &Calculator{
		baseFee:  baseFee,
		perKmFee: perKmFee,
		speed:    float64(cfg.AvgSpeedKmph),
	}, nil
}

// QuoteBetween prices the run between the pickup and dropoff coordinates.
func (c *Calculator) QuoteBetween(pickupLat, pickupLng, dropLat, dropLng float64) Quote {
	km := geo.HaversineKm(pickupLat, pickupLng, dropLat, dropLng)
	return c.QuoteForDistance(km)
}

// QuoteForDistance prices a run of the given length in kilometers.
func (c *Calculator) QuoteForDistance(km float64) Quote {
	if km < 0 {
		km = 0
	}
	distance := decimal.NewFromFloat(km).Round(2)
	fee := c.baseFee.Add(c.perKmFee.Mul(distance)).Round(2)
	minutes := int(math.Ceil(km / c.speed * 60))

	return Quote{
		Fee:              fee,
		DistanceKm:       distance,
		EstimatedMinutes: minutes,
	}
}

// BaseQuote prices a run when no coordinates are known. Only the base fee
// applies and no distance or timing estimate is produced.
func (c *Calculator) BaseQuote() Quote {
	return Quote{Fee: c.baseFee}
}
