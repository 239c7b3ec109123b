package checkout

import (
	"log"

	"cardbase.GO/core/apperr"
	checkoutEntity "cardbase.GO/model/entity/checkout"
	checkoutRepo "cardbase.GO/model/repository/checkout"
	"cardbase.GO/service/notify"
)

// validateItems rejects structurally bad cart input before any store
// access. Availability problems are not errors here; the repository drops
// and reports those lines.
func validateItems(items []checkoutRepo.ItemInput) error {
	for _, item := range items {
		if item.ProductID == "" || item.Quantity < 1 {
			return apperr.ErrInvalidRequest
		}
	}
	return nil
}

// CreateDraft saves the user's cart as their single ACTIVE draft.
func CreateDraft(repo *checkoutRepo.CheckoutRepository, userID string, items []checkoutRepo.ItemInput) (*checkoutRepo.DraftResult, error) {
	if userID == "" {
		return nil, apperr.ErrInvalidRequest
	}
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return repo.CreateOrUpdateDraft(userID, items)
}

// GetActiveDraft returns the user's cart, nil when none exists.
func GetActiveDraft(repo *checkoutRepo.CheckoutRepository, userID string) (*checkoutRepo.ActiveDraft, error) {
	if userID == "" {
		return nil, apperr.ErrInvalidRequest
	}
	return repo.GetActiveDraft(userID)
}

// Revalidate re-runs the pricing/availability check without persisting.
func Revalidate(repo *checkoutRepo.CheckoutRepository, items []checkoutRepo.ItemInput) (*checkoutRepo.DraftResult, error) {
	if err := validateItems(items); err != nil {
		return nil, err
	}
	return repo.RevalidateItems(items)
}

// CreateOrderRequest is the checkout submission.
type CreateOrderRequest struct {
	UserID         string
	DraftID        string
	PaymentMethod  string
	PickupBranchID *string
	CustomerEmail  *string
}

// CreateOrder converts the draft into an order and fires the confirmation
// mail after the transaction committed. Mail failure never fails checkout.
func CreateOrder(repo *checkoutRepo.CheckoutRepository, mailer notify.EmailService, req CreateOrderRequest) (*checkoutRepo.CreatedOrder, error) {
	if req.UserID == "" || req.DraftID == "" {
		return nil, apperr.ErrInvalidRequest
	}
	if req.PaymentMethod != checkoutEntity.PaymentPayInStore {
		return nil, apperr.ErrInvalidRequest
	}

	created, err := repo.CreateOrder(checkoutRepo.CreateOrderParams{
		UserID:         req.UserID,
		DraftID:        req.DraftID,
		PaymentMethod:  req.PaymentMethod,
		PickupBranchID: req.PickupBranchID,
		CustomerEmail:  req.CustomerEmail,
	})
	if err != nil {
		return nil, err
	}

	if !created.AlreadyExisted && created.CustomerEmail != nil {
		orderID := created.OrderID
		email := *created.CustomerEmail
		mail := notify.RenderOrderCreated(orderID, created.Subtotal, created.Currency, created.ExpiresAt, created.PickupBranchName)
		go func() {
			if err := mailer.SendEmail(email, mail.Subject, mail.HTML, mail.Text); err != nil {
				log.Printf("order created email failed: order=%s err=%v", orderID, err)
			}
		}()
	}

	return created, nil
}
