package apperr

import (
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Error is a domain error carrying the HTTP status the presentation layer
// should answer with and a stable machine-readable code.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Newf builds an error with a formatted message so guard failures can say
// exactly what was violated.
func Newf(status int, code, format string, args ...interface{}) *Error {
	return &Error{Status: status, Code: code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "invalid request")
	ErrServerError    = New(http.StatusInternalServerError, "SERVER_ERROR", "server error")

	ErrDraftEmpty              = New(http.StatusBadRequest, "CHECKOUT_DRAFT_EMPTY", "checkout draft empty")
	ErrDraftInactive           = New(http.StatusBadRequest, "CHECKOUT_DRAFT_INACTIVE", "checkout draft inactive")
	ErrDraftNotFound           = New(http.StatusNotFound, "CHECKOUT_DRAFT_NOT_FOUND", "checkout draft not found")
	ErrOrderNotFound           = New(http.StatusNotFound, "CHECKOUT_ORDER_NOT_FOUND", "checkout order not found")
	ErrOrderForbidden          = New(http.StatusForbidden, "ORDER_FORBIDDEN", "order forbidden")
	ErrInventoryInsufficient   = New(http.StatusBadRequest, "CHECKOUT_INVENTORY_INSUFFICIENT", "checkout inventory insufficient")
	ErrInventoryNotFound       = New(http.StatusNotFound, "INVENTORY_NOT_FOUND", "inventory item not found")
	ErrInventoryInvalid        = New(http.StatusBadRequest, "INVENTORY_INVALID", "inventory adjustment invalid")
	ErrBranchNotFound          = New(http.StatusNotFound, "BRANCH_NOT_FOUND", "branch not found")
	ErrOrderStatusInvalid      = New(http.StatusBadRequest, "ORDER_STATUS_INVALID", "order status invalid")
	ErrOrderTransitionInvalid  = New(http.StatusBadRequest, "ORDER_TRANSITION_INVALID", "order transition invalid")
	ErrOrderTransitionConflict = New(http.StatusConflict, "ORDER_TRANSITION_CONFLICT", "order transitioned concurrently")
	ErrReasonRequired          = New(http.StatusBadRequest, "ORDER_TRANSITION_REASON_REQUIRED", "reason required for manual cancellation")
	ErrEventsRequired          = New(http.StatusBadRequest, "EVENTS_REQUIRED", "events required")
	ErrEventInvalid            = New(http.StatusBadRequest, "EVENT_INVALID", "invalid event payload")
	ErrPosIDRequired           = New(http.StatusBadRequest, "POS_ID_REQUIRED", "posId required")
	ErrPosAckRequired          = New(http.StatusBadRequest, "POS_ACK_REQUIRED", "posId and eventIds required")
	ErrPosOrderRequired        = New(http.StatusBadRequest, "ORDER_REQUIRED", "orderId and items required")
	ErrInvalidPagination       = New(http.StatusBadRequest, "INVALID_PAGINATION", "invalid pagination")
)

// From coerces any error into an *Error, mapping store-level conditions to
// the domain taxonomy so raw gorm errors never leak to callers.
func From(err error, fallback *Error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrInvalidRequest
	}
	return ErrServerError
}

// Is reports whether err is the given domain error.
func Is(err error, target *Error) bool {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Code == target.Code
	}
	return false
}
