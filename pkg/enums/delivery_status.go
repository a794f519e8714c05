package enums

import "fmt"

// DeliveryStatus tracks a delivery assignment from posting to hand-off.
type DeliveryStatus string

const (
	DeliveryStatusAvailable DeliveryStatus = "available"
	DeliveryStatusAssigned  DeliveryStatus = "assigned"
	DeliveryStatusPickedUp  DeliveryStatus = "picked_up"
	DeliveryStatusInTransit DeliveryStatus = "in_transit"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusCompleted DeliveryStatus = "completed"
)

// validDeliveryStatuses is ordered by lifecycle rank; transitions only move
// forward through this sequence.
var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusAvailable,
	DeliveryStatusAssigned,
	DeliveryStatusPickedUp,
	DeliveryStatusInTransit,
	DeliveryStatusDelivered,
	DeliveryStatusCompleted,
}

// String implements fmt.Stringer.
func (d DeliveryStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (d DeliveryStatus) IsValid() bool {
	return d.rank() >= 0
}

// IsTerminal reports whether the assignment has finished its lifecycle.
func (d DeliveryStatus) IsTerminal() bool {
	return d == DeliveryStatusCompleted
}

func (d DeliveryStatus) rank() int {
	for i, candidate := range validDeliveryStatuses {
		if candidate == d {
			return i
		}
	}
	return -1
}

// CanTransitionTo reports whether target is exactly one step forward in the
// delivery lifecycle.
func (d DeliveryStatus) CanTransitionTo(target DeliveryStatus) bool {
	from, to := d.rank(), target.rank()
	if from < 0 || to < 0 {
		return false
	}
	return to == from+1
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
