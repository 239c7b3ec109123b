package inventory

import "time"

// InventoryAdjustment is the audit row for a manual ledger correction. Delta
// is the signed amount actually applied, which differs from the requested
// delta when clamping at zero occurred.
type InventoryAdjustment struct {
	ID               string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	ProductID        string    `gorm:"column:product_id;type:varchar(64);not null;index" json:"product_id"`
	Delta            int       `gorm:"column:delta;not null" json:"delta"`
	Reason           string    `gorm:"column:reason;type:varchar(255);not null" json:"reason"`
	ActorUserID      string    `gorm:"column:actor_user_id;type:varchar(36);not null" json:"actor_user_id"`
	PreviousQuantity int       `gorm:"column:previous_quantity;not null" json:"previous_quantity"`
	NewQuantity      int       `gorm:"column:new_quantity;not null" json:"new_quantity"`
	CreatedAt        time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (InventoryAdjustment) TableName() string {
	return "inventory_adjustment"
}
