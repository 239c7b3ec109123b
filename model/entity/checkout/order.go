package checkout

import "time"

// PaymentPayInStore is the only supported payment method (placeholder flag,
// actual payment happens at the branch counter).
const PaymentPayInStore = "PAY_IN_STORE"

// Reservation statuses.
const (
	ReservationActive   = "ACTIVE"
	ReservationReleased = "RELEASED"
)

// OnlineOrder is a converted draft driven through the status state machine.
// Exactly one order exists per draft.
type OnlineOrder struct {
	ID                string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID            string     `gorm:"column:user_id;type:varchar(36);not null;index" json:"user_id"`
	DraftID           string     `gorm:"column:draft_id;type:varchar(36);not null;uniqueIndex" json:"draft_id"`
	Status            string     `gorm:"column:status;type:varchar(24);not null;index" json:"status"`
	PaymentMethod     string     `gorm:"column:payment_method;type:varchar(16);not null" json:"payment_method"`
	PickupBranchID    *string    `gorm:"column:pickup_branch_id;type:varchar(36)" json:"pickup_branch_id,omitempty"`
	Subtotal          float64    `gorm:"column:subtotal;type:decimal(12,2);not null" json:"subtotal"`
	Currency          string     `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	CustomerEmail     *string    `gorm:"column:customer_email;type:varchar(255)" json:"customer_email,omitempty"`
	ExpiresAt         time.Time  `gorm:"column:expires_at;not null;index" json:"expires_at"`
	StatusUpdatedAt   time.Time  `gorm:"column:status_updated_at;not null" json:"status_updated_at"`
	CancelReason      *string    `gorm:"column:cancel_reason;type:varchar(255)" json:"cancel_reason,omitempty"`
	CancelledByUserID *string    `gorm:"column:cancelled_by_user_id;type:varchar(36)" json:"cancelled_by_user_id,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Items        []OnlineOrderItem      `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	PickupBranch *PickupBranch          `gorm:"foreignKey:PickupBranchID;references:ID" json:"pickup_branch,omitempty"`
	Reservations []InventoryReservation `gorm:"foreignKey:OrderID" json:"reservations,omitempty"`
	StatusLogs   []OnlineOrderStatusLog `gorm:"foreignKey:OrderID" json:"status_logs,omitempty"`
}

func (OnlineOrder) TableName() string {
	return "online_order"
}

// OnlineOrderItem is an immutable order line copied from the draft.
type OnlineOrderItem struct {
	ID                   string  `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	OrderID              string  `gorm:"column:order_id;type:varchar(36);not null;index" json:"order_id"`
	ProductID            string  `gorm:"column:product_id;type:varchar(64);not null" json:"product_id"`
	Quantity             int     `gorm:"column:quantity;not null" json:"quantity"`
	PriceSnapshot        float64 `gorm:"column:price_snapshot;type:decimal(12,2);not null" json:"price_snapshot"`
	Currency             string  `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	AvailabilitySnapshot string  `gorm:"column:availability_snapshot;type:varchar(16);not null" json:"availability_snapshot"`
}

func (OnlineOrderItem) TableName() string {
	return "online_order_item"
}

// InventoryReservation holds stock against one order line. Released exactly
// once when the order reaches a cancellation state; release only touches
// ACTIVE rows so it can never double-count.
type InventoryReservation struct {
	ID         string     `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	OrderID    string     `gorm:"column:order_id;type:varchar(36);not null;index" json:"order_id"`
	ProductID  string     `gorm:"column:product_id;type:varchar(64);not null" json:"product_id"`
	Quantity   int        `gorm:"column:quantity;not null" json:"quantity"`
	Status     string     `gorm:"column:status;type:varchar(16);not null;default:ACTIVE" json:"status"`
	ExpiresAt  time.Time  `gorm:"column:expires_at;not null" json:"expires_at"`
	ReleasedAt *time.Time `gorm:"column:released_at" json:"released_at,omitempty"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (InventoryReservation) TableName() string {
	return "inventory_reservation"
}

// OnlineOrderStatusLog is the append-only transition history of an order.
// FromStatus is nil for the creation entry.
type OnlineOrderStatusLog struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	OrderID     string    `gorm:"column:order_id;type:varchar(36);not null;index" json:"order_id"`
	FromStatus  *string   `gorm:"column:from_status;type:varchar(24)" json:"from_status,omitempty"`
	ToStatus    string    `gorm:"column:to_status;type:varchar(24);not null" json:"to_status"`
	Reason      *string   `gorm:"column:reason;type:varchar(255)" json:"reason,omitempty"`
	ActorUserID *string   `gorm:"column:actor_user_id;type:varchar(36)" json:"actor_user_id,omitempty"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (OnlineOrderStatusLog) TableName() string {
	return "online_order_status_log"
}
