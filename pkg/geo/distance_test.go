package geo

import (
	"math"
	"testing"
)

func TestHaversineKmZeroDistance(t *testing.T) {
	if d := HaversineKm(40.0, -74.0, 40.0, -74.0); d != 0 {
		t.Fatalf("identical points should be 0km apart, got %f", d)
	}
}

func TestHaversineKmKnownDistance(t *testing.T) {
	// New Delhi to Mumbai is roughly 1150km.
	d := HaversineKm(28.6139, 77.2090, 19.0760, 72.8777)
	if math.Abs(d-1150) > 20 {
		t.Fatalf("expected ~1150km, got %f", d)
	}
}

func TestHaversineKmSymmetry(t *testing.T) {
	a := HaversineKm(12.9716, 77.5946, 13.0827, 80.2707)
	b := HaversineKm(13.0827, 80.2707, 12.9716, 77.5946)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance should be symmetric: %f vs %f", a, b)
	}
}
