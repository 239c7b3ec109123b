package inventory

import (
	"strings"

	"cardbase.GO/core/apperr"
	inventoryEntity "cardbase.GO/model/entity/inventory"
	inventoryRepo "cardbase.GO/model/repository/inventory"
)

// ListRequest is the paginated admin inventory listing input.
type ListRequest struct {
	Page      int
	PageSize  int
	Query     string
	Sort      string
	Direction string
}

// ListResponse pairs a page of rows with the unpaged total.
type ListResponse struct {
	Items    []inventoryEntity.ReadModelInventory `json:"items"`
	Total    int64                                `json:"total"`
	Page     int                                  `json:"page"`
	PageSize int                                  `json:"pageSize"`
}

// ListInventory returns a page of read-model rows for the back office.
func ListInventory(repo *inventoryRepo.InventoryRepository, req ListRequest) (*ListResponse, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 || req.PageSize > 100 {
		req.PageSize = 20
	}
	items, total, err := repo.List(inventoryRepo.ListParams{
		Page:      req.Page,
		PageSize:  req.PageSize,
		Query:     strings.TrimSpace(req.Query),
		Sort:      req.Sort,
		Direction: req.Direction,
	})
	if err != nil {
		return nil, err
	}
	return &ListResponse{Items: items, Total: total, Page: req.Page, PageSize: req.PageSize}, nil
}

// AdjustRequest is a manual stock correction submitted by an operator.
type AdjustRequest struct {
	ProductID   string `json:"productId"`
	Delta       int    `json:"delta"`
	Reason      string `json:"reason"`
	ActorUserID string `json:"-"`
}

// AdjustInventory applies a signed correction, clamped at zero, and returns
// the updated row plus the audit record. Zero deltas and empty reasons are
// rejected before touching the ledger.
func AdjustInventory(repo *inventoryRepo.InventoryRepository, req AdjustRequest) (*inventoryRepo.AdjustResult, error) {
	if req.ProductID == "" || req.Delta == 0 {
		return nil, apperr.ErrInventoryInvalid
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, apperr.ErrReasonRequired
	}
	return repo.Adjust(req.ProductID, req.Delta, strings.TrimSpace(req.Reason), req.ActorUserID)
}
