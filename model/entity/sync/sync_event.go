package sync

import (
	"time"

	"gorm.io/datatypes"
)

// SyncEvent statuses.
const (
	EventPending = "PENDING"
)

// EventTypeOnlineSale is emitted when the online store sells stock that POS
// terminals must subtract locally.
const EventTypeOnlineSale = "ONLINE_SALE"

// SyncEvent is one append-only row in the idempotent event log exchanged
// with POS terminals. EventID is the idempotency key (the caller's event id
// unless an explicit key was supplied); inserting an existing key is a
// duplicate no-op, never an error.
type SyncEvent struct {
	ID         string         `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	EventID    string         `gorm:"column:event_id;type:varchar(128);not null;uniqueIndex" json:"event_id"`
	Type       string         `gorm:"column:type;type:varchar(64);not null" json:"type"`
	OccurredAt time.Time      `gorm:"column:occurred_at;not null;index" json:"occurred_at"`
	Source     string         `gorm:"column:source;type:varchar(64);not null" json:"source"`
	Payload    datatypes.JSON `gorm:"column:payload" json:"payload"`
	Status     string         `gorm:"column:status;type:varchar(16);not null;default:PENDING" json:"status"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (SyncEvent) TableName() string {
	return "sync_event"
}
