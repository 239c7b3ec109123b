package checkout

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"cardbase.GO/core/apperr"
	checkoutEntity "cardbase.GO/model/entity/checkout"
)

// TimelineEntry is one status log row as presented to callers, statuses
// already canonical.
type TimelineEntry struct {
	ID          string     `json:"id"`
	FromStatus  *string    `json:"fromStatus"`
	ToStatus    string     `json:"toStatus"`
	Reason      *string    `json:"reason"`
	ActorUserID *string    `json:"actorUserId"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// OrderDetail is the full order view (customer or admin).
type OrderDetail struct {
	Order    checkoutEntity.OnlineOrder `json:"order"`
	Timeline []TimelineEntry            `json:"timeline"`
}

// canonicalStatus maps legacy stored values (CANCELED rows inherited from
// the predecessor database) onto the closed enum; unknown values pass
// through untouched.
func canonicalStatus(value string) string {
	if s, ok := checkoutEntity.NormalizeStatus(value); ok {
		return string(s)
	}
	return value
}

func canonicalStatusPtr(value *string) *string {
	if value == nil {
		return nil
	}
	s := canonicalStatus(*value)
	return &s
}

func buildTimeline(logs []checkoutEntity.OnlineOrderStatusLog) []TimelineEntry {
	timeline := make([]TimelineEntry, 0, len(logs))
	for _, row := range logs {
		timeline = append(timeline, TimelineEntry{
			ID:          row.ID,
			FromStatus:  canonicalStatusPtr(row.FromStatus),
			ToStatus:    canonicalStatus(row.ToStatus),
			Reason:      row.Reason,
			ActorUserID: row.ActorUserID,
			CreatedAt:   row.CreatedAt,
		})
	}
	return timeline
}

// GetCustomerOrder returns an order scoped to its owner. Nil when absent; a
// fetch of someone else's order is forbidden, not hidden.
func (r *CheckoutRepository) GetCustomerOrder(userID, orderID string) (*OrderDetail, error) {
	var order checkoutEntity.OnlineOrder
	err := r.db.Preload("Items").
		Preload("PickupBranch").
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, apperr.ErrOrderForbidden
	}

	detail := &OrderDetail{Order: order, Timeline: buildTimeline(order.StatusLogs)}
	detail.Order.Status = canonicalStatus(detail.Order.Status)
	detail.Order.StatusLogs = nil
	return detail, nil
}

// ListCustomerOrders pages a user's orders, newest first.
func (r *CheckoutRepository) ListCustomerOrders(userID string, page, pageSize int) ([]checkoutEntity.OnlineOrder, int64, error) {
	q := r.db.Model(&checkoutEntity.OnlineOrder{}).Where("user_id = ?", userID)

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []checkoutEntity.OnlineOrder
	err := r.db.Preload("PickupBranch").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	for i := range items {
		items[i].Status = canonicalStatus(items[i].Status)
	}
	return items, total, err
}

// AdminListParams controls the admin order grid.
type AdminListParams struct {
	Page      int
	PageSize  int
	Query     string
	Status    string // raw, CANCELED alias accepted
	Sort      string // createdAt | status | expiresAt | subtotal
	Direction string // asc | desc
}

// ListAdminOrders pages all orders with search (order id or customer email)
// and sorting.
func (r *CheckoutRepository) ListAdminOrders(params AdminListParams) ([]checkoutEntity.OnlineOrder, int64, error) {
	q := r.db.Model(&checkoutEntity.OnlineOrder{})

	if params.Status != "" {
		status, ok := checkoutEntity.NormalizeStatus(params.Status)
		if !ok {
			return nil, 0, apperr.ErrOrderStatusInvalid
		}
		q = q.Where("status = ?", string(status))
	}
	if search := params.Query; search != "" {
		q = q.Where("id = ? OR customer_email LIKE ?", search, "%"+search+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	direction := "desc"
	if params.Direction == "asc" {
		direction = "asc"
	}
	orderBy := "created_at " + direction
	switch params.Sort {
	case "status":
		orderBy = "status " + direction
	case "expiresAt":
		orderBy = "expires_at " + direction
	case "subtotal":
		orderBy = "subtotal " + direction
	}

	var items []checkoutEntity.OnlineOrder
	err := q.Preload("PickupBranch").
		Order(orderBy).
		Offset((params.Page - 1) * params.PageSize).
		Limit(params.PageSize).
		Find(&items).Error
	for i := range items {
		items[i].Status = canonicalStatus(items[i].Status)
	}
	return items, total, err
}

// GetAdminOrder returns the unscoped order view, nil when absent.
func (r *CheckoutRepository) GetAdminOrder(orderID string) (*OrderDetail, error) {
	var order checkoutEntity.OnlineOrder
	err := r.db.Preload("Items").
		Preload("PickupBranch").
		Preload("StatusLogs", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Where("id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	detail := &OrderDetail{Order: order, Timeline: buildTimeline(order.StatusLogs)}
	detail.Order.Status = canonicalStatus(detail.Order.Status)
	detail.Order.StatusLogs = nil
	return detail, nil
}

// ListBranches returns active pickup branches for the storefront selector.
func (r *CheckoutRepository) ListBranches() ([]checkoutEntity.PickupBranch, error) {
	var branches []checkoutEntity.PickupBranch
	err := r.db.Where("active = ?", true).Order("name ASC").Find(&branches).Error
	return branches, err
}
