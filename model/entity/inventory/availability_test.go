package inventory

import (
	"testing"
	"time"
)

func TestAvailability(t *testing.T) {
	cases := []struct {
		available int
		want      string
	}{
		{0, AvailabilityOutOfStock},
		{-1, AvailabilityOutOfStock},
		{1, AvailabilityLowStock},
		{3, AvailabilityLowStock},
		{4, AvailabilityInStock},
		{100, AvailabilityInStock},
	}
	for _, c := range cases {
		if got := Availability(c.available); got != c.want {
			t.Errorf("Availability(%d) = %q, want %q", c.available, got, c.want)
		}
	}
}

func TestState(t *testing.T) {
	now := time.Now()

	if got := State(5, nil); got != StatePendingSync {
		t.Errorf("State with nil lastSyncedAt = %q, want PENDING_SYNC", got)
	}
	cases := []struct {
		available int
		want      string
	}{
		{0, StateOutOfStock},
		{2, StateLowStock},
		{3, StateLowStock},
		{4, StateAvailable},
	}
	for _, c := range cases {
		if got := State(c.available, &now); got != c.want {
			t.Errorf("State(%d) = %q, want %q", c.available, got, c.want)
		}
	}
}
