package sync

import (
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"cardbase.GO/core/apperr"
	syncRepo "cardbase.GO/model/repository/sync"
)

// RecordEvents appends a batch of POS-bound events to the sync ledger.
// The whole batch is validated before any row is written.
func RecordEvents(repo *syncRepo.SyncRepository, events []syncRepo.EventInput) (*syncRepo.RecordResult, error) {
	return repo.RecordEvents(events)
}

// GetPendingEvents lists events the given POS terminal has not yet
// acknowledged, oldest first. since is parsed as RFC 3339 when present.
func GetPendingEvents(repo *syncRepo.SyncRepository, posID, since string) ([]syncRepo.PendingEvent, error) {
	if strings.TrimSpace(posID) == "" {
		return nil, apperr.ErrPosIDRequired
	}
	var sinceTime *time.Time
	if since != "" {
		parsed, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return nil, apperr.Newf(400, "VALIDATION_ERROR", "since must be RFC 3339: %q", since)
		}
		sinceTime = &parsed
	}
	return repo.GetPendingEvents(posID, sinceTime)
}

// AckRequest marks events as delivered to one terminal.
type AckRequest struct {
	PosID    string   `json:"posId"`
	EventIDs []string `json:"eventIds"`
}

// AcknowledgeEvents records delivery acks; re-acking is a no-op.
func AcknowledgeEvents(repo *syncRepo.SyncRepository, req AckRequest) error {
	return repo.AcknowledgeEvents(strings.TrimSpace(req.PosID), req.EventIDs)
}

// PosOrderRequest is an in-store sale pushed from a terminal. Items arrive
// as loose maps since terminals disagree on field casing.
type PosOrderRequest struct {
	OrderID string           `json:"orderId"`
	Items   []map[string]any `json:"items"`
}

// PosOrderResult reports whether the sale was new or a replay.
type PosOrderResult struct {
	OrderID   string `json:"orderId"`
	Duplicate bool   `json:"duplicate"`
}

// CreatePosOrder records an in-store sale and applies its clamped inventory
// decrements. A replayed orderId acknowledges without touching stock again.
func CreatePosOrder(repo *syncRepo.SyncRepository, req PosOrderRequest) (*PosOrderResult, error) {
	if strings.TrimSpace(req.OrderID) == "" || len(req.Items) == 0 {
		return nil, apperr.ErrPosOrderRequired
	}

	items := make([]syncRepo.PosOrderItem, 0, len(req.Items))
	for _, raw := range req.Items {
		var item syncRepo.PosOrderItem
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &item,
			WeaklyTypedInput: true,
		})
		if err != nil {
			return nil, apperr.From(err, apperr.ErrServerError)
		}
		if err := decoder.Decode(raw); err != nil {
			return nil, apperr.Newf(400, "VALIDATION_ERROR", "invalid order item: %v", err)
		}
		if item.ProductID == "" {
			return nil, apperr.ErrPosOrderRequired
		}
		items = append(items, item)
	}

	duplicate, err := repo.CreatePosOrder(req.OrderID, items)
	if err != nil {
		return nil, err
	}
	return &PosOrderResult{OrderID: req.OrderID, Duplicate: duplicate}, nil
}

// ReadProducts serves the POS product read model.
func ReadProducts(repo *syncRepo.SyncRepository, params syncRepo.ReadProductsParams) ([]syncRepo.ProductView, int64, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 200 {
		params.PageSize = 50
	}
	return repo.ReadProducts(params)
}
