package checkout

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cardbase.GO/core/apperr"
	checkoutEntity "cardbase.GO/model/entity/checkout"
)

// ExpirationDays is how long an unpaid order holds its reservations.
const ExpirationDays = 10

const reasonOrderCreated = "order_created"

// CreateOrderParams describes a draft-to-order conversion request.
type CreateOrderParams struct {
	UserID         string
	DraftID        string
	PaymentMethod  string
	PickupBranchID *string
	CustomerEmail  *string
}

// CreatedOrder is the conversion outcome. AlreadyExisted is true when the
// draft had been converted before and the existing order was returned.
type CreatedOrder struct {
	OrderID          string                `json:"orderId"`
	Status           checkoutEntity.Status `json:"status"`
	ExpiresAt        time.Time             `json:"expiresAt"`
	Subtotal         float64               `json:"subtotal"`
	Currency         string                `json:"currency"`
	CustomerEmail    *string               `json:"-"`
	PickupBranchName *string               `json:"pickupBranchName,omitempty"`
	AlreadyExisted   bool                  `json:"alreadyExisted"`
}

// CreateOrder converts an ACTIVE draft into an order: order row, order
// items, one ACTIVE reservation per line, one ledger decrement per line,
// draft marked CONVERTED and the initial status log entry, all in one
// transaction. Re-invoking for an already-converted draft returns the
// existing order.
func (r *CheckoutRepository) CreateOrder(params CreateOrderParams) (*CreatedOrder, error) {
	var result CreatedOrder

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var existing checkoutEntity.OnlineOrder
		err := tx.Where("draft_id = ?", params.DraftID).First(&existing).Error
		if err == nil {
			result = CreatedOrder{
				OrderID:        existing.ID,
				Status:         checkoutEntity.Status(existing.Status),
				ExpiresAt:      existing.ExpiresAt,
				Subtotal:       existing.Subtotal,
				Currency:       existing.Currency,
				CustomerEmail:  existing.CustomerEmail,
				AlreadyExisted: true,
			}
			result.PickupBranchName = r.branchName(tx, existing.PickupBranchID)
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		var draft checkoutEntity.PreorderDraft
		err = tx.Preload("Items").
			Where("id = ? AND user_id = ?", params.DraftID, params.UserID).
			First(&draft).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrDraftNotFound
		}
		if err != nil {
			return err
		}
		if draft.Status != checkoutEntity.DraftActive {
			return apperr.ErrDraftInactive
		}

		var branchName *string
		if params.PickupBranchID != nil {
			var branch checkoutEntity.PickupBranch
			err := tx.Where("id = ?", *params.PickupBranchID).First(&branch).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.ErrBranchNotFound
			}
			if err != nil {
				return err
			}
			branchName = &branch.Name
		}

		if len(draft.Items) == 0 {
			return apperr.ErrDraftEmpty
		}

		productIDs := make([]string, 0, len(draft.Items))
		for _, item := range draft.Items {
			productIDs = append(productIDs, item.ProductID)
		}
		stock, err := r.inv.Snapshots(tx, productIDs)
		if err != nil {
			return err
		}
		for _, item := range draft.Items {
			snap, ok := stock[item.ProductID]
			if !ok || snap.Available <= 0 || snap.Available < item.Quantity {
				return apperr.ErrInventoryInsufficient
			}
		}

		// subtotal uses the draft's locked-in snapshots, not live prices
		subtotal := 0.0
		for _, item := range draft.Items {
			subtotal += item.PriceSnapshot * float64(item.Quantity)
		}

		now := Now()
		expiresAt := now.Add(ExpirationDays * 24 * time.Hour)

		order := checkoutEntity.OnlineOrder{
			ID:              uuid.NewString(),
			UserID:          params.UserID,
			DraftID:         draft.ID,
			Status:          string(checkoutEntity.StatusPendingPayment),
			PaymentMethod:   params.PaymentMethod,
			PickupBranchID:  params.PickupBranchID,
			Subtotal:        subtotal,
			Currency:        checkoutEntity.DefaultCurrency,
			CustomerEmail:   params.CustomerEmail,
			ExpiresAt:       expiresAt,
			StatusUpdatedAt: now,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		for _, item := range draft.Items {
			orderItem := checkoutEntity.OnlineOrderItem{
				ID:                   uuid.NewString(),
				OrderID:              order.ID,
				ProductID:            item.ProductID,
				Quantity:             item.Quantity,
				PriceSnapshot:        item.PriceSnapshot,
				Currency:             item.Currency,
				AvailabilitySnapshot: item.AvailabilitySnapshot,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}

			reservation := checkoutEntity.InventoryReservation{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Status:    checkoutEntity.ReservationActive,
				ExpiresAt: expiresAt,
			}
			if err := tx.Create(&reservation).Error; err != nil {
				return err
			}

			if err := r.inv.Decrement(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		if err := tx.Model(&checkoutEntity.PreorderDraft{}).
			Where("id = ?", draft.ID).
			Update("status", checkoutEntity.DraftConverted).Error; err != nil {
			return err
		}

		initial := string(checkoutEntity.StatusPendingPayment)
		reason := reasonOrderCreated
		logRow := checkoutEntity.OnlineOrderStatusLog{
			ID:       uuid.NewString(),
			OrderID:  order.ID,
			ToStatus: initial,
			Reason:   &reason,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}

		result = CreatedOrder{
			OrderID:          order.ID,
			Status:           checkoutEntity.StatusPendingPayment,
			ExpiresAt:        expiresAt,
			Subtotal:         subtotal,
			Currency:         order.Currency,
			CustomerEmail:    params.CustomerEmail,
			PickupBranchName: branchName,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (r *CheckoutRepository) branchName(tx *gorm.DB, branchID *string) *string {
	if branchID == nil {
		return nil
	}
	var branch checkoutEntity.PickupBranch
	if err := tx.Where("id = ?", *branchID).First(&branch).Error; err != nil {
		return nil
	}
	return &branch.Name
}

// TransitionParams is a validated transition request (the service layer has
// already normalized statuses and checked the transition table and guards).
type TransitionParams struct {
	OrderID     string
	FromStatus  checkoutEntity.Status
	ToStatus    checkoutEntity.Status
	ActorUserID *string
	Reason      *string
}

// TransitionResult reports an executed (or no-op) transition.
type TransitionResult struct {
	OrderID       string                `json:"orderId"`
	FromStatus    checkoutEntity.Status `json:"fromStatus"`
	ToStatus      checkoutEntity.Status `json:"toStatus"`
	CustomerEmail *string               `json:"-"`
	NoOp          bool                  `json:"noOp"`
}

// Transition executes a status change. The persisted status must still equal
// FromStatus: checked once on read, and again on the write itself, which is
// conditioned on the current status so that two concurrent transitions off
// the same snapshot cannot both win under MySQL's repeatable-read isolation.
// Entering a cancellation state releases the order's ACTIVE reservations in
// the same transaction as the status write and log append, after the write
// guard has settled which transition owns the order.
func (r *CheckoutRepository) Transition(params TransitionParams) (*TransitionResult, error) {
	var result TransitionResult

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var order checkoutEntity.OnlineOrder
		err := tx.Where("id = ?", params.OrderID).First(&order).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		current := checkoutEntity.Status(order.Status)
		if current != params.FromStatus {
			return apperr.Newf(400, "ORDER_TRANSITION_INVALID",
				"order is %s, caller expected %s", current, params.FromStatus)
		}

		if params.FromStatus == params.ToStatus {
			result = TransitionResult{
				OrderID:       order.ID,
				FromStatus:    params.FromStatus,
				ToStatus:      params.ToStatus,
				CustomerEmail: order.CustomerEmail,
				NoOp:          true,
			}
			return nil
		}

		now := Now()
		updates := map[string]interface{}{
			"status":               string(params.ToStatus),
			"status_updated_at":    now,
			"cancel_reason":        nil,
			"cancelled_by_user_id": nil,
		}
		if params.ToStatus == checkoutEntity.StatusCancelledManual {
			updates["cancel_reason"] = params.Reason
			updates["cancelled_by_user_id"] = params.ActorUserID
		}
		res := tx.Model(&checkoutEntity.OnlineOrder{}).
			Where("id = ? AND status = ?", order.ID, string(params.FromStatus)).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// a concurrent transition committed between our read and write
			return apperr.Newf(409, "ORDER_TRANSITION_CONFLICT",
				"order %s was transitioned concurrently", order.ID)
		}

		if checkoutEntity.IsCancellation(params.ToStatus) {
			if err := r.releaseReservations(tx, order.ID, now); err != nil {
				return err
			}
		}

		from := string(params.FromStatus)
		logRow := checkoutEntity.OnlineOrderStatusLog{
			ID:          uuid.NewString(),
			OrderID:     order.ID,
			FromStatus:  &from,
			ToStatus:    string(params.ToStatus),
			Reason:      params.Reason,
			ActorUserID: params.ActorUserID,
		}
		if err := tx.Create(&logRow).Error; err != nil {
			return err
		}

		result = TransitionResult{
			OrderID:       order.ID,
			FromStatus:    params.FromStatus,
			ToStatus:      params.ToStatus,
			CustomerEmail: order.CustomerEmail,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// releaseReservations restores ledger quantities for every ACTIVE
// reservation of the order, then flips them to RELEASED. Scoping both steps
// to ACTIVE rows makes release idempotent.
func (r *CheckoutRepository) releaseReservations(tx *gorm.DB, orderID string, now time.Time) error {
	var reservations []checkoutEntity.InventoryReservation
	err := tx.Where("order_id = ? AND status = ?", orderID, checkoutEntity.ReservationActive).
		Find(&reservations).Error
	if err != nil {
		return err
	}

	for _, reservation := range reservations {
		if err := r.inv.Increment(tx, reservation.ProductID, reservation.Quantity); err != nil {
			return err
		}
	}

	return tx.Model(&checkoutEntity.InventoryReservation{}).
		Where("order_id = ? AND status = ?", orderID, checkoutEntity.ReservationActive).
		Updates(map[string]interface{}{
			"status":      checkoutEntity.ReservationReleased,
			"released_at": now,
		}).Error
}

// TransitionContext is the minimal order view the guard checks need.
type TransitionContext struct {
	OrderID        string
	Status         checkoutEntity.Status
	PaymentMethod  string
	PickupBranchID *string
}

// GetTransitionContext loads the fields transition guards inspect, or nil
// when the order does not exist.
func (r *CheckoutRepository) GetTransitionContext(orderID string) (*TransitionContext, error) {
	var order checkoutEntity.OnlineOrder
	err := r.db.Select("id", "status", "payment_method", "pickup_branch_id").
		Where("id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &TransitionContext{
		OrderID:        order.ID,
		Status:         checkoutEntity.Status(order.Status),
		PaymentMethod:  order.PaymentMethod,
		PickupBranchID: order.PickupBranchID,
	}, nil
}

// FindExpired returns ids of unpaid orders whose deadline has passed.
func (r *CheckoutRepository) FindExpired(now time.Time) ([]string, error) {
	var ids []string
	err := r.db.Model(&checkoutEntity.OnlineOrder{}).
		Where("status = ? AND expires_at <= ?", checkoutEntity.StatusPendingPayment, now).
		Pluck("id", &ids).Error
	return ids, err
}
