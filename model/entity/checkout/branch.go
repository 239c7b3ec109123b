package checkout

import "time"

// PickupBranch is a physical store a customer can pick an order up at.
type PickupBranch struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	Name      string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	City      *string   `gorm:"column:city;type:varchar(255)" json:"city,omitempty"`
	Address   *string   `gorm:"column:address;type:varchar(512)" json:"address,omitempty"`
	Active    bool      `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PickupBranch) TableName() string {
	return "pickup_branch"
}
