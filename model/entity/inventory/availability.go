package inventory

import "time"

// LowStockThreshold is the highest count still reported as low stock.
const LowStockThreshold = 3

// Availability snapshot values (draft/order line snapshots).
const (
	AvailabilityInStock    = "in_stock"
	AvailabilityLowStock   = "low_stock"
	AvailabilityOutOfStock = "out_of_stock"
)

// Availability state values (read model column).
const (
	StateAvailable   = "AVAILABLE"
	StateLowStock    = "LOW_STOCK"
	StateOutOfStock  = "OUT_OF_STOCK"
	StatePendingSync = "PENDING_SYNC"
)

// Availability classifies a count for line snapshots.
func Availability(available int) string {
	if available <= 0 {
		return AvailabilityOutOfStock
	}
	if available <= LowStockThreshold {
		return AvailabilityLowStock
	}
	return AvailabilityInStock
}

// State classifies a count for the read model. A row that has never been
// reconciled with the POS system reports PENDING_SYNC regardless of count.
func State(available int, lastSyncedAt *time.Time) string {
	if lastSyncedAt == nil {
		return StatePendingSync
	}
	if available <= 0 {
		return StateOutOfStock
	}
	if available <= LowStockThreshold {
		return StateLowStock
	}
	return StateAvailable
}
