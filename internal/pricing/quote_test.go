package pricing

import (
	"testing"

	"github.com/angelmondragon/streetlink-backend/pkg/config"
)

func testDeliveryConfig() config.DeliveryConfig {
	return config.DeliveryConfig{
		BaseFee:      "50.00",
		PerKmFee:     "8.00",
		AvgSpeedKmph: 25,
	}
}

func TestQuoteForDistance(t *testing.T) {
	calc, err := NewCalculator(testDeliveryConfig())
	if err != nil {
		t.Fatalf("new calculator: %v", err)
	}

	quote := calc.QuoteForDistance(10)
	if got := quote.Fee.StringFixed(2); got != "130.00" {
		t.Errorf("fee = %s, want 130.00", got)
	}
	if got := quote.DistanceKm.StringFixed(2); got != "10.00" {
		t.Errorf("distance = %s, want 10.00", got)
	}
	if quote.EstimatedMinutes != 24 {
		t.Errorf("estimated minutes = %d, want 24", quote.EstimatedMinutes)
	}
}

func TestQuoteRoundsUpMinutes(t *testing.T) {
	calc, _ := NewCalculator(testDeliveryConfig())

	quote := calc.QuoteForDistance(0.5)
	// 0.5km at 25km/h is 1.2 minutes; riders don't deliver in fractions.
	if quote.EstimatedMinutes != 2 {
		t.Errorf("estimated minutes = %d, want 2", quote.EstimatedMinutes)
	}
}

func TestQuoteBetweenUsesHaversine(t *testing.T) {
	calc, _ := NewCalculator(testDeliveryConfig())

	// ~1.1km apart in Mexico City.
	quote := calc.QuoteBetween(19.4326, -99.1332, 19.4426, -99.1332)
	if quote.DistanceKm.IsZero() {
		t.Fatal("expected non-zero distance")
	}
	if quote.Fee.LessThanOrEqual(calc.baseFee) {
		t.Errorf("fee %s should exceed base fee", quote.Fee)
	}
}

func TestQuoteNegativeDistanceClamped(t *testing.T) {
	calc, _ := NewCalculator(testDeliveryConfig())

	quote := calc.QuoteForDistance(-4)
	if got := quote.Fee.StringFixed(2); got != "50.00" {
		t.Errorf("fee = %s, want base fee 50.00", got)
	}
	if quote.EstimatedMinutes != 0 {
		t.Errorf("estimated minutes = %d, want 0", quote.EstimatedMinutes)
	}
}

func TestNewCalculatorRejectsBadConfig(t *testing.T) {
	bad := testDeliveryConfig()
	bad.PerKmFee = "free"
	if _, err := NewCalculator(bad); err == nil {
		t.Error("expected error for invalid per-km fee")
	}

	bad = testDeliveryConfig()
	bad.AvgSpeedKmph = 0
	if _, err := NewCalculator(bad); err == nil {
		t.Error("expected error for zero speed")
	}
}
