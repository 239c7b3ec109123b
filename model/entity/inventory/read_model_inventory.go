package inventory

import "time"

// ReadModelInventory represents the read_model_inventory table: one row per
// product, `available` is the single sellable-unit counter shared by the
// online and POS paths.
type ReadModelInventory struct {
	ProductID         string     `gorm:"column:product_id;type:varchar(64);primaryKey" json:"product_id"`
	Slug              *string    `gorm:"column:slug;type:varchar(255)" json:"slug,omitempty"`
	DisplayName       *string    `gorm:"column:display_name;type:varchar(255)" json:"display_name,omitempty"`
	ShortDescription  *string    `gorm:"column:short_description;type:text" json:"short_description,omitempty"`
	Price             *float64   `gorm:"column:price;type:decimal(12,2)" json:"price,omitempty"`
	Currency          string     `gorm:"column:currency;type:varchar(3);not null;default:MXN" json:"currency"`
	ImageURL          *string    `gorm:"column:image_url;type:varchar(512)" json:"image_url,omitempty"`
	Category          *string    `gorm:"column:category;type:varchar(255)" json:"category,omitempty"`
	CategoryID        *string    `gorm:"column:category_id;type:varchar(64);index" json:"category_id,omitempty"`
	Game              *string    `gorm:"column:game;type:varchar(255)" json:"game,omitempty"`
	GameID            *string    `gorm:"column:game_id;type:varchar(64);index" json:"game_id,omitempty"`
	ExpansionID       *string    `gorm:"column:expansion_id;type:varchar(64);index" json:"expansion_id,omitempty"`
	Available         int        `gorm:"column:available;not null;default:0" json:"available"`
	AvailabilityState *string    `gorm:"column:availability_state;type:varchar(16)" json:"availability_state,omitempty"`
	LastSyncedAt      *time.Time `gorm:"column:last_synced_at" json:"last_synced_at,omitempty"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ReadModelInventory) TableName() string {
	return "read_model_inventory"
}
