package checkout

// Status is the closed set of online order states.
type Status string

const (
	StatusCreated          Status = "CREATED"
	StatusPendingPayment   Status = "PENDING_PAYMENT"
	StatusPaid             Status = "PAID"
	StatusReadyForPickup   Status = "READY_FOR_PICKUP"
	StatusShipped          Status = "SHIPPED"
	StatusCancelledExpired Status = "CANCELLED_EXPIRED"
	StatusCancelledManual  Status = "CANCELLED_MANUAL"
)

// legacyCancelled is accepted on input as a synonym for CANCELLED_MANUAL and
// normalized everywhere; it is never stored.
const legacyCancelled = "CANCELED"

var validNext = map[Status]map[Status]bool{
	StatusCreated:          {StatusPendingPayment: true, StatusPaid: true},
	StatusPendingPayment:   {StatusReadyForPickup: true, StatusPaid: true, StatusCancelledExpired: true, StatusCancelledManual: true},
	StatusPaid:             {StatusReadyForPickup: true, StatusCancelledManual: true},
	StatusReadyForPickup:   {StatusPaid: true, StatusShipped: true, StatusCancelledManual: true},
	StatusShipped:          {},
	StatusCancelledExpired: {},
	StatusCancelledManual:  {},
}

// NormalizeStatus maps a raw status string to its canonical Status,
// folding the legacy CANCELED alias. ok is false for unknown values.
func NormalizeStatus(value string) (Status, bool) {
	if value == legacyCancelled {
		return StatusCancelledManual, true
	}
	s := Status(value)
	if _, known := validNext[s]; !known {
		return "", false
	}
	return s, true
}

// CanTransition reports whether the directed edge from -> to exists.
// Same-state is not an edge; callers treat it as a no-op before asking.
func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

// IsCancellation reports whether a status releases reservations on entry.
func IsCancellation(s Status) bool {
	return s == StatusCancelledExpired || s == StatusCancelledManual
}

// IsTerminal reports whether a status has no outgoing edges.
func IsTerminal(s Status) bool {
	return len(validNext[s]) == 0
}

// Statuses returns every canonical status (for exhaustive validation).
func Statuses() []Status {
	return []Status{
		StatusCreated,
		StatusPendingPayment,
		StatusPaid,
		StatusReadyForPickup,
		StatusShipped,
		StatusCancelledExpired,
		StatusCancelledManual,
	}
}
