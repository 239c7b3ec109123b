package inventory

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardbase.GO/core/apperr"
	inventoryEntity "cardbase.GO/model/entity/inventory"
)

// Now is swapped out in tests.
var Now = time.Now

// InventoryRepository owns every write to the `available` counter. All four
// mutating call paths (checkout, reservation release, manual adjustment, POS
// sync) go through these primitives; no other code touches the column.
type InventoryRepository struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

func NewInventoryRepository(db *gorm.DB) (*InventoryRepository, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	return &InventoryRepository{db: db, sqlDB: sqlDB}, nil
}

// Snapshot is the pricing/availability view of one product row.
type Snapshot struct {
	ProductID string
	Available int
	Price     *float64
	Currency  string
}

// Snapshots fetches stock and price for multiple products in one query.
// Pass a transaction handle when the read must share the atomic unit.
func (r *InventoryRepository) Snapshots(tx *gorm.DB, productIDs []string) (map[string]Snapshot, error) {
	if len(productIDs) == 0 {
		return map[string]Snapshot{}, nil
	}
	if tx == nil {
		tx = r.db
	}

	var rows []inventoryEntity.ReadModelInventory
	err := tx.Select("product_id", "available", "price", "currency").
		Where("product_id IN ?", productIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	result := make(map[string]Snapshot, len(rows))
	for _, row := range rows {
		result[row.ProductID] = Snapshot{
			ProductID: row.ProductID,
			Available: row.Available,
			Price:     row.Price,
			Currency:  row.Currency,
		}
	}
	return result, nil
}

// Decrement subtracts qty from a product's counter. The guard on the UPDATE
// makes concurrent checkouts serialize on the row: if the remaining stock
// cannot cover qty no row matches and the caller's transaction rolls back.
func (r *InventoryRepository) Decrement(tx *gorm.DB, productID string, qty int) error {
	if qty <= 0 {
		return apperr.ErrInvalidRequest
	}
	res := tx.Model(&inventoryEntity.ReadModelInventory{}).
		Where("product_id = ? AND available >= ?", productID, qty).
		Update("available", gorm.Expr("available - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrInventoryInsufficient
	}
	return nil
}

// Increment adds qty back to a product's counter (reservation release).
func (r *InventoryRepository) Increment(tx *gorm.DB, productID string, qty int) error {
	if qty <= 0 {
		return apperr.ErrInvalidRequest
	}
	return tx.Model(&inventoryEntity.ReadModelInventory{}).
		Where("product_id = ?", productID).
		Update("available", gorm.Expr("available + ?", qty)).Error
}

// DecrementClamped subtracts qty but never below zero, marking the row as
// synced and recomputing its availability state. Missing rows are created
// empty, since POS terminals may sell products the read model has not seen yet.
// Returns the quantity actually subtracted.
func (r *InventoryRepository) DecrementClamped(tx *gorm.DB, productID string, qty int) (int, error) {
	if qty <= 0 {
		return 0, apperr.ErrInvalidRequest
	}
	now := Now()

	for attempt := 0; attempt < 3; attempt++ {
		var row inventoryEntity.ReadModelInventory
		err := tx.Where("product_id = ?", productID).First(&row).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			state := inventoryEntity.State(0, &now)
			row = inventoryEntity.ReadModelInventory{
				ProductID:         productID,
				Available:         0,
				AvailabilityState: &state,
				LastSyncedAt:      &now,
			}
			if err := tx.Create(&row).Error; err != nil {
				return 0, err
			}
			return 0, nil
		}
		if err != nil {
			return 0, err
		}

		next := row.Available - qty
		if next < 0 {
			next = 0
		}
		if next == row.Available && row.LastSyncedAt != nil {
			return 0, nil
		}
		state := inventoryEntity.State(next, &now)
		res := tx.Model(&inventoryEntity.ReadModelInventory{}).
			Where("product_id = ? AND available = ?", productID, row.Available).
			Updates(map[string]interface{}{
				"available":          next,
				"availability_state": state,
				"last_synced_at":     now,
			})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return row.Available - next, nil
		}
		// lost the optimistic race, re-read and retry
	}
	return 0, fmt.Errorf("inventory: contention on product %s", productID)
}

// AdjustResult reports an applied manual correction.
type AdjustResult struct {
	Item       inventoryEntity.ReadModelInventory
	Adjustment inventoryEntity.InventoryAdjustment
}

// Adjust applies a signed manual correction, clamped at zero, and writes the
// audit row in the same transaction. The recorded delta is the amount
// actually applied.
func (r *InventoryRepository) Adjust(productID string, delta int, reason, actorUserID string) (*AdjustResult, error) {
	var result AdjustResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		for attempt := 0; attempt < 3; attempt++ {
			var row inventoryEntity.ReadModelInventory
			if err := tx.Where("product_id = ?", productID).First(&row).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.ErrInventoryNotFound
				}
				return err
			}

			previous := row.Available
			next := previous + delta
			if next < 0 {
				next = 0
			}
			state := inventoryEntity.State(next, row.LastSyncedAt)

			// A fully clamped adjustment changes nothing; skip the write but
			// still record the (zero-delta) audit row.
			if next != previous {
				res := tx.Model(&inventoryEntity.ReadModelInventory{}).
					Where("product_id = ? AND available = ?", productID, previous).
					Updates(map[string]interface{}{
						"available":          next,
						"availability_state": state,
					})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					continue
				}
			}

			adjustment := inventoryEntity.InventoryAdjustment{
				ID:               uuid.NewString(),
				ProductID:        productID,
				Delta:            next - previous,
				Reason:           reason,
				ActorUserID:      actorUserID,
				PreviousQuantity: previous,
				NewQuantity:      next,
			}
			if err := tx.Create(&adjustment).Error; err != nil {
				return err
			}

			row.Available = next
			row.AvailabilityState = &state
			result = AdjustResult{Item: row, Adjustment: adjustment}
			return nil
		}
		return fmt.Errorf("inventory: contention on product %s", productID)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListParams controls the admin inventory listing.
type ListParams struct {
	Page      int
	PageSize  int
	Query     string
	Sort      string // updatedAt | available | name
	Direction string // asc | desc
}

// List returns a page of inventory rows with optional contains-search over
// the display columns.
func (r *InventoryRepository) List(params ListParams) ([]inventoryEntity.ReadModelInventory, int64, error) {
	q := r.db.Model(&inventoryEntity.ReadModelInventory{})
	if params.Query != "" {
		like := "%" + params.Query + "%"
		q = q.Where(
			"display_name LIKE ? OR slug LIKE ? OR category LIKE ? OR game LIKE ? OR product_id LIKE ?",
			like, like, like, like, like,
		)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "desc"
	if params.Direction == "asc" {
		direction = "asc"
	}
	orderBy := "updated_at " + direction
	switch params.Sort {
	case "available":
		orderBy = "available " + direction
	case "name":
		orderBy = "display_name " + direction
	}

	var items []inventoryEntity.ReadModelInventory
	err := q.Order(orderBy).
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	return items, total, err
}

// GetQuantity returns the raw counter for a product (monitoring/tests).
func (r *InventoryRepository) GetQuantity(productID string) (int, bool) {
	const query = `SELECT available FROM read_model_inventory WHERE product_id = ? LIMIT 1`
	var available sql.NullInt64
	if err := r.sqlDB.QueryRow(query, productID).Scan(&available); err != nil || !available.Valid {
		return 0, false
	}
	return int(available.Int64), true
}
