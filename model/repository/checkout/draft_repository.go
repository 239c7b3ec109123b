package checkout

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardbase.GO/core/cache"
	checkoutEntity "cardbase.GO/model/entity/checkout"
	inventoryEntity "cardbase.GO/model/entity/inventory"
	inventoryRepo "cardbase.GO/model/repository/inventory"
)

// Removal reasons reported back to the cart owner.
const (
	RemovedInsufficient = "insufficient"
	RemovedMissing      = "missing"
)

const metadataCacheTTL = 300 // seconds

// Now is swapped in tests.
var Now = time.Now

// CheckoutRepository owns drafts and orders. Every mutation that touches the
// ledger runs inside one gorm transaction together with its own rows.
type CheckoutRepository struct {
	db  *gorm.DB
	inv *inventoryRepo.InventoryRepository
}

func NewCheckoutRepository(db *gorm.DB) (*CheckoutRepository, error) {
	inv, err := inventoryRepo.NewInventoryRepository(db)
	if err != nil {
		return nil, err
	}
	return &CheckoutRepository{db: db, inv: inv}, nil
}

// Inventory exposes the ledger for callers sharing this repository's handle.
func (r *CheckoutRepository) Inventory() *inventoryRepo.InventoryRepository {
	return r.inv
}

// ItemInput is a requested cart line.
type ItemInput struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// LineSnapshot is an accepted cart line with locked-in price and
// availability.
type LineSnapshot struct {
	ProductID            string  `json:"productId"`
	Quantity             int     `json:"quantity"`
	PriceSnapshot        float64 `json:"priceSnapshot"`
	Currency             string  `json:"currency"`
	AvailabilitySnapshot string  `json:"availabilitySnapshot"`
}

// RemovedItem reports a line dropped from the cart and why.
type RemovedItem struct {
	ProductID string `json:"productId"`
	Reason    string `json:"reason"`
}

// DraftResult is the outcome of saving or revalidating a cart.
type DraftResult struct {
	DraftID      string         `json:"draftId,omitempty"`
	Items        []LineSnapshot `json:"items"`
	RemovedItems []RemovedItem  `json:"removedItems"`
}

// buildSnapshots classifies requested lines against live stock. Lines that
// cannot be honored are dropped and reported, never failed: checkout always
// hands back a usable cart.
func buildSnapshots(items []ItemInput, stock map[string]inventoryRepo.Snapshot) ([]LineSnapshot, []RemovedItem) {
	accepted := make([]LineSnapshot, 0, len(items))
	removed := make([]RemovedItem, 0)

	for _, item := range items {
		snap, ok := stock[item.ProductID]
		if !ok {
			removed = append(removed, RemovedItem{ProductID: item.ProductID, Reason: RemovedMissing})
			continue
		}
		if snap.Available <= 0 || snap.Available < item.Quantity {
			removed = append(removed, RemovedItem{ProductID: item.ProductID, Reason: RemovedInsufficient})
			continue
		}
		if snap.Price == nil {
			removed = append(removed, RemovedItem{ProductID: item.ProductID, Reason: RemovedMissing})
			continue
		}
		accepted = append(accepted, LineSnapshot{
			ProductID:            item.ProductID,
			Quantity:             item.Quantity,
			PriceSnapshot:        *snap.Price,
			Currency:             checkoutEntity.DefaultCurrency,
			AvailabilitySnapshot: inventoryEntity.Availability(snap.Available),
		})
	}
	return accepted, removed
}

// CreateOrUpdateDraft replaces the item set of the user's ACTIVE draft with
// the accepted lines, creating the draft row only if none exists.
func (r *CheckoutRepository) CreateOrUpdateDraft(userID string, items []ItemInput) (*DraftResult, error) {
	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	stock, err := r.inv.Snapshots(nil, productIDs)
	if err != nil {
		return nil, err
	}
	accepted, removed := buildSnapshots(items, stock)

	var draftID string
	err = r.db.Transaction(func(tx *gorm.DB) error {
		var draft checkoutEntity.PreorderDraft
		err := tx.Where("user_id = ? AND status = ?", userID, checkoutEntity.DraftActive).
			Order("updated_at DESC").
			First(&draft).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			draft = checkoutEntity.PreorderDraft{
				ID:     uuid.NewString(),
				UserID: userID,
				Status: checkoutEntity.DraftActive,
			}
			if err := tx.Create(&draft).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		} else {
			if err := tx.Model(&draft).Update("updated_at", Now()).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("draft_id = ?", draft.ID).
			Delete(&checkoutEntity.PreorderDraftItem{}).Error; err != nil {
			return err
		}

		if len(accepted) > 0 {
			rows := make([]checkoutEntity.PreorderDraftItem, 0, len(accepted))
			for _, line := range accepted {
				rows = append(rows, checkoutEntity.PreorderDraftItem{
					ID:                   uuid.NewString(),
					DraftID:              draft.ID,
					ProductID:            line.ProductID,
					Quantity:             line.Quantity,
					PriceSnapshot:        line.PriceSnapshot,
					Currency:             line.Currency,
					AvailabilitySnapshot: line.AvailabilitySnapshot,
				})
			}
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}

		draftID = draft.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &DraftResult{DraftID: draftID, Items: accepted, RemovedItems: removed}, nil
}

// RevalidateItems is the stateless variant of the cart check: same
// classification, no persistence.
func (r *CheckoutRepository) RevalidateItems(items []ItemInput) (*DraftResult, error) {
	productIDs := make([]string, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	stock, err := r.inv.Snapshots(nil, productIDs)
	if err != nil {
		return nil, err
	}
	accepted, removed := buildSnapshots(items, stock)
	return &DraftResult{Items: accepted, RemovedItems: removed}, nil
}

// ActiveDraftItem is a draft line enriched with catalog display metadata.
type ActiveDraftItem struct {
	LineSnapshot
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	ImageURL *string `json:"imageUrl"`
	Game     *string `json:"game"`
}

// ActiveDraft is the user's cart as shown to them.
type ActiveDraft struct {
	DraftID string            `json:"draftId"`
	Items   []ActiveDraftItem `json:"items"`
}

type productMeta struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	ImageURL *string `json:"imageUrl"`
	Game     *string `json:"game"`
}

// GetActiveDraft returns the user's ACTIVE draft with display metadata, or
// nil when there is none.
func (r *CheckoutRepository) GetActiveDraft(userID string) (*ActiveDraft, error) {
	var draft checkoutEntity.PreorderDraft
	err := r.db.Preload("Items").
		Where("user_id = ? AND status = ?", userID, checkoutEntity.DraftActive).
		Order("updated_at DESC").
		First(&draft).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	productIDs := make([]string, 0, len(draft.Items))
	for _, item := range draft.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	meta, err := r.productMetadata(productIDs)
	if err != nil {
		return nil, err
	}

	result := &ActiveDraft{DraftID: draft.ID, Items: make([]ActiveDraftItem, 0, len(draft.Items))}
	for _, item := range draft.Items {
		entry := ActiveDraftItem{
			LineSnapshot: LineSnapshot{
				ProductID:            item.ProductID,
				Quantity:             item.Quantity,
				PriceSnapshot:        item.PriceSnapshot,
				Currency:             item.Currency,
				AvailabilitySnapshot: item.AvailabilitySnapshot,
			},
		}
		if m, ok := meta[item.ProductID]; ok {
			entry.Name = m.Name
			entry.Slug = m.Slug
			entry.ImageURL = m.ImageURL
			entry.Game = m.Game
		}
		result.Items = append(result.Items, entry)
	}
	return result, nil
}

// productMetadata resolves display fields for the cart view, cache first.
func (r *CheckoutRepository) productMetadata(productIDs []string) (map[string]productMeta, error) {
	result := make(map[string]productMeta, len(productIDs))
	missing := make([]string, 0, len(productIDs))

	for _, id := range productIDs {
		var m productMeta
		if cache.GetJSON("catalog:meta:"+id, &m) {
			result[id] = m
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	type metaRow struct {
		ProductID   string  `gorm:"column:product_id"`
		DisplayName *string `gorm:"column:display_name"`
		Slug        *string `gorm:"column:slug"`
		ImageURL    *string `gorm:"column:image_url"`
		Game        *string `gorm:"column:game"`
	}
	var rows []metaRow
	err := r.db.Table("read_model_inventory").
		Select("product_id, display_name, slug, image_url, game").
		Where("product_id IN ?", missing).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		m := productMeta{Name: row.DisplayName, Slug: row.Slug, ImageURL: row.ImageURL, Game: row.Game}
		result[row.ProductID] = m
		cache.SetJSON("catalog:meta:"+row.ProductID, m, metadataCacheTTL, []string{"catalog"})
	}
	return result, nil
}
