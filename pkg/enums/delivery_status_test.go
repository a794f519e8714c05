package enums

import "testing"

func TestDeliveryStatusForwardOnly(t *testing.T) {
	order := []DeliveryStatus{
		DeliveryStatusAvailable,
		DeliveryStatusAssigned,
		DeliveryStatusPickedUp,
		DeliveryStatusInTransit,
		DeliveryStatusDelivered,
		DeliveryStatusCompleted,
	}

	for i, from := range order {
		for j, to := range order {
			got := from.CanTransitionTo(to)
			want := j == i+1
			if got != want {
				t.Fatalf("%s -> %s: got %v want %v", from, to, got, want)
			}
		}
	}
}

func TestDeliveryStatusRejectsUnknown(t *testing.T) {
	if DeliveryStatus("teleported").IsValid() {
		t.Fatal("unknown status must be invalid")
	}
	if DeliveryStatusInTransit.CanTransitionTo("teleported") {
		t.Fatal("transition to unknown status must be rejected")
	}
	if _, err := ParseDeliveryStatus("teleported"); err == nil {
		t.Fatal("parse must reject unknown status")
	}
}

func TestDeliveryStatusTerminal(t *testing.T) {
	if !DeliveryStatusCompleted.IsTerminal() {
		t.Fatal("completed is terminal")
	}
	if DeliveryStatusDelivered.IsTerminal() {
		t.Fatal("delivered still advances to completed")
	}
}
