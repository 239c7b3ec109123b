package checkout

import "time"

// Draft statuses.
const (
	DraftActive    = "ACTIVE"
	DraftConverted = "CONVERTED"
)

// DefaultCurrency is the shop currency applied to every snapshot.
const DefaultCurrency = "MXN"

// PreorderDraft is a user's in-progress cart. A user has at most one ACTIVE
// draft; saving a new cart replaces the item set of the existing row.
type PreorderDraft struct {
	ID        string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);not null;index" json:"user_id"`
	Status    string    `gorm:"column:status;type:varchar(16);not null;default:ACTIVE" json:"status"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Items []PreorderDraftItem `gorm:"foreignKey:DraftID" json:"items,omitempty"`
}

func (PreorderDraft) TableName() string {
	return "preorder_draft"
}

// PreorderDraftItem is a price/availability-snapshotted cart line.
type PreorderDraftItem struct {
	ID                   string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	DraftID              string    `gorm:"column:draft_id;type:varchar(36);not null;index" json:"draft_id"`
	ProductID            string    `gorm:"column:product_id;type:varchar(64);not null" json:"product_id"`
	Quantity             int       `gorm:"column:quantity;not null" json:"quantity"`
	PriceSnapshot        float64   `gorm:"column:price_snapshot;type:decimal(12,2);not null" json:"price_snapshot"`
	Currency             string    `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	AvailabilitySnapshot string    `gorm:"column:availability_snapshot;type:varchar(16);not null" json:"availability_snapshot"`
	CreatedAt            time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (PreorderDraftItem) TableName() string {
	return "preorder_draft_item"
}
