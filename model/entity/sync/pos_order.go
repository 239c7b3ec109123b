package sync

import (
	"time"

	"gorm.io/datatypes"
)

// PosOrder is an order posted by a POS terminal. OrderID is the terminal's
// own id; a duplicate post is acknowledged as such, not rejected, because
// offline hardware retries.
type PosOrder struct {
	ID        string         `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	OrderID   string         `gorm:"column:order_id;type:varchar(64);not null;uniqueIndex" json:"order_id"`
	Status    string         `gorm:"column:status;type:varchar(16);not null;default:CREATED" json:"status"`
	Payload   datatypes.JSON `gorm:"column:payload" json:"payload"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PosOrder) TableName() string {
	return "pos_order"
}
