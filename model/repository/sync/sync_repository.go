package sync

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cardbase.GO/core/apperr"
	inventoryEntity "cardbase.GO/model/entity/inventory"
	syncEntity "cardbase.GO/model/entity/sync"
	inventoryRepo "cardbase.GO/model/repository/inventory"
)

const posEventSource = "online-store"

// Now is swapped in tests.
var Now = time.Now

// SyncRepository owns the idempotent event log exchanged with POS terminals
// and the POS-originated order ingest.
type SyncRepository struct {
	db  *gorm.DB
	inv *inventoryRepo.InventoryRepository
}

func NewSyncRepository(db *gorm.DB) (*SyncRepository, error) {
	inv, err := inventoryRepo.NewInventoryRepository(db)
	if err != nil {
		return nil, err
	}
	return &SyncRepository{db: db, inv: inv}, nil
}

// EventInput is one externally-submitted event. OccurredAt arrives as an
// RFC3339 string; POS clocks are not trusted beyond parseability.
type EventInput struct {
	EventID        string          `json:"eventId"`
	Type           string          `json:"type"`
	OccurredAt     string          `json:"occurredAt"`
	Source         string          `json:"source"`
	Payload        json.RawMessage `json:"payload"`
	IdempotencyKey string          `json:"idempotencyKey,omitempty"`
}

// RecordResult partitions an ingest batch by outcome.
type RecordResult struct {
	Accepted   []string `json:"accepted"`
	Duplicates []string `json:"duplicates"`
}

func (e *EventInput) key() string {
	if e.IdempotencyKey != "" {
		return e.IdempotencyKey
	}
	return e.EventID
}

// RecordEvents appends events to the log. Malformed input fails the whole
// call before anything is written; an existing idempotency key
// short-circuits that event to the duplicates partition.
func (r *SyncRepository) RecordEvents(events []EventInput) (*RecordResult, error) {
	if len(events) == 0 {
		return nil, apperr.ErrEventsRequired
	}

	occurred := make([]time.Time, len(events))
	for i, event := range events {
		if event.EventID == "" || event.Type == "" || event.Source == "" || len(event.Payload) == 0 {
			return nil, apperr.ErrEventInvalid
		}
		ts, err := time.Parse(time.RFC3339, event.OccurredAt)
		if err != nil {
			return nil, apperr.Newf(400, "EVENT_INVALID", "invalid occurredAt for event %s", event.EventID)
		}
		occurred[i] = ts
	}

	result := &RecordResult{Accepted: []string{}, Duplicates: []string{}}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for i, event := range events {
			key := event.key()

			var count int64
			if err := tx.Model(&syncEntity.SyncEvent{}).
				Where("event_id = ?", key).
				Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				result.Duplicates = append(result.Duplicates, event.EventID)
				continue
			}

			row := syncEntity.SyncEvent{
				ID:         uuid.NewString(),
				EventID:    key,
				Type:       event.Type,
				OccurredAt: occurred[i],
				Source:     event.Source,
				Payload:    datatypes.JSON(event.Payload),
				Status:     syncEntity.EventPending,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			result.Accepted = append(result.Accepted, event.EventID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PendingEvent is an event not yet acknowledged by the asking terminal.
type PendingEvent struct {
	EventID    string          `json:"eventId"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurredAt"`
	Source     string          `json:"source"`
	Payload    json.RawMessage `json:"payload"`
}

// GetPendingEvents returns events the given terminal has not acknowledged,
// optionally bounded below by occurredAt, ordered (occurredAt, eventId) so
// a resuming terminal pages stably.
func (r *SyncRepository) GetPendingEvents(posID string, since *time.Time) ([]PendingEvent, error) {
	q := r.db.Model(&syncEntity.SyncEvent{}).
		Where("event_id NOT IN (SELECT event_id FROM pos_event_ack WHERE pos_id = ?)", posID)
	if since != nil {
		q = q.Where("occurred_at >= ?", *since)
	}

	var rows []syncEntity.SyncEvent
	if err := q.Order("occurred_at ASC, event_id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	events := make([]PendingEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, PendingEvent{
			EventID:    row.EventID,
			Type:       row.Type,
			OccurredAt: row.OccurredAt,
			Source:     row.Source,
			Payload:    json.RawMessage(row.Payload),
		})
	}
	return events, nil
}

// AcknowledgeEvents upserts (posId, eventId) pairs; re-acknowledging is a
// no-op.
func (r *SyncRepository) AcknowledgeEvents(posID string, eventIDs []string) error {
	if posID == "" || len(eventIDs) == 0 {
		return apperr.ErrPosAckRequired
	}
	rows := make([]syncEntity.PosEventAck, 0, len(eventIDs))
	for _, eventID := range eventIDs {
		rows = append(rows, syncEntity.PosEventAck{PosID: posID, EventID: eventID})
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// PosOrderItem is one line of a POS-posted order. POS hardware is loose
// with types, so decoding is done weakly upstream.
type PosOrderItem struct {
	ProductID string `json:"productId" mapstructure:"productId"`
	Quantity  int    `json:"quantity" mapstructure:"quantity"`
}

// CreatePosOrder ingests a terminal-created order: records it, emits an
// ONLINE_SALE event keyed order-{id} for the other terminals, and applies
// clamped ledger decrements per line. A duplicate orderId is a no-op
// acknowledged as such, since offline hardware retries.
func (r *SyncRepository) CreatePosOrder(orderID string, items []PosOrderItem) (bool, error) {
	duplicate := false

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&syncEntity.PosOrder{}).
			Where("order_id = ?", orderID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			duplicate = true
			return nil
		}

		payload, err := json.Marshal(map[string]interface{}{"items": items})
		if err != nil {
			return err
		}
		order := syncEntity.PosOrder{
			ID:      uuid.NewString(),
			OrderID: orderID,
			Status:  "CREATED",
			Payload: datatypes.JSON(payload),
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		eventPayload, err := json.Marshal(map[string]interface{}{"orderId": orderID, "items": items})
		if err != nil {
			return err
		}
		event := syncEntity.SyncEvent{
			ID:         uuid.NewString(),
			EventID:    "order-" + orderID,
			Type:       syncEntity.EventTypeOnlineSale,
			OccurredAt: Now(),
			Source:     posEventSource,
			Payload:    datatypes.JSON(eventPayload),
			Status:     syncEntity.EventPending,
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&event).Error; err != nil {
			return err
		}

		for _, item := range items {
			if item.Quantity <= 0 {
				continue
			}
			if _, err := r.inv.DecrementClamped(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return duplicate, nil
}

// ReadProductsParams filters the product read model for POS clients.
type ReadProductsParams struct {
	Page        int
	PageSize    int
	ID          string
	GameID      string // "misc" selects rows without a game
	CategoryID  string
	ExpansionID string
	PriceMin    *float64
	PriceMax    *float64
}

// PriceView is an amount plus shop currency.
type PriceView struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// ProductView is one read-model row as served to POS clients.
type ProductView struct {
	ID               string     `json:"id"`
	Slug             *string    `json:"slug"`
	Name             *string    `json:"name"`
	Category         *string    `json:"category"`
	CategoryID       *string    `json:"categoryId"`
	Price            *PriceView `json:"price"`
	Game             *string    `json:"game"`
	GameID           *string    `json:"gameId"`
	ExpansionID      *string    `json:"expansionId"`
	ImageURL         *string    `json:"imageUrl"`
	Available        int        `json:"available"`
	State            string     `json:"state"`
	UpdatedAt        time.Time  `json:"updatedAt"`
	ShortDescription *string    `json:"shortDescription"`
	LastSyncedAt     *time.Time `json:"lastSyncedAt"`
}

// ReadProducts pages the inventory read model with the POS filters.
func (r *SyncRepository) ReadProducts(params ReadProductsParams) ([]ProductView, int64, error) {
	q := r.db.Model(&inventoryEntity.ReadModelInventory{})

	if params.ID != "" {
		q = q.Where("product_id = ?", params.ID)
	}
	if params.GameID == "misc" {
		q = q.Where("game_id IS NULL")
	} else if params.GameID != "" {
		q = q.Where("game_id = ?", params.GameID)
	}
	if params.CategoryID != "" {
		q = q.Where("category_id = ?", params.CategoryID)
	}
	if params.ExpansionID != "" {
		q = q.Where("expansion_id = ?", params.ExpansionID)
	}
	if params.PriceMin != nil {
		q = q.Where("price >= ?", *params.PriceMin)
	}
	if params.PriceMax != nil {
		q = q.Where("price <= ?", *params.PriceMax)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []inventoryEntity.ReadModelInventory
	err := q.Order("updated_at DESC").
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	items := make([]ProductView, 0, len(rows))
	for _, row := range rows {
		state := inventoryEntity.State(row.Available, row.LastSyncedAt)
		if row.AvailabilityState != nil {
			state = *row.AvailabilityState
		}
		view := ProductView{
			ID:               row.ProductID,
			Slug:             row.Slug,
			Name:             row.DisplayName,
			Category:         row.Category,
			CategoryID:       row.CategoryID,
			Game:             row.Game,
			GameID:           row.GameID,
			ExpansionID:      row.ExpansionID,
			ImageURL:         row.ImageURL,
			Available:        row.Available,
			State:            state,
			UpdatedAt:        row.UpdatedAt,
			ShortDescription: row.ShortDescription,
			LastSyncedAt:     row.LastSyncedAt,
		}
		if row.Price != nil {
			view.Price = &PriceView{Amount: *row.Price, Currency: row.Currency}
		}
		items = append(items, view)
	}
	return items, total, nil
}
