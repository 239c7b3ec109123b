package order

import (
	"log"
	"strings"
	"time"

	"cardbase.GO/core/apperr"
	checkoutEntity "cardbase.GO/model/entity/checkout"
	checkoutRepo "cardbase.GO/model/repository/checkout"
	"cardbase.GO/service/notify"
)

const reasonExpiredUnpaid = "expired_unpaid"

// Now is swapped in tests.
var Now = time.Now

// TransitionRequest is a raw transition submission (statuses may use the
// legacy CANCELED spelling).
type TransitionRequest struct {
	OrderID     string
	ToStatus    string
	ActorUserID *string
	Reason      *string
}

// TransitionOrderStatus validates a transition against the state table and
// its guards, executes it, and fires the customer notice after commit.
// Guard failures name what was violated; they are never coerced.
func TransitionOrderStatus(repo *checkoutRepo.CheckoutRepository, mailer notify.EmailService, req TransitionRequest) (*checkoutRepo.TransitionResult, error) {
	if req.OrderID == "" {
		return nil, apperr.ErrInvalidRequest
	}
	to, ok := checkoutEntity.NormalizeStatus(req.ToStatus)
	if !ok {
		return nil, apperr.ErrOrderStatusInvalid
	}

	ctx, err := repo.GetTransitionContext(req.OrderID)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, apperr.ErrOrderNotFound
	}
	from := ctx.Status

	if from != to && !checkoutEntity.CanTransition(from, to) {
		return nil, apperr.Newf(400, "ORDER_TRANSITION_INVALID",
			"transition %s -> %s not allowed", from, to)
	}

	if from == checkoutEntity.StatusPendingPayment && to == checkoutEntity.StatusReadyForPickup {
		if ctx.PaymentMethod != checkoutEntity.PaymentPayInStore || ctx.PickupBranchID == nil {
			return nil, apperr.Newf(400, "ORDER_TRANSITION_INVALID",
				"ready for pickup requires pay-in-store payment and a pickup branch")
		}
	}
	if to == checkoutEntity.StatusCancelledManual {
		if req.Reason == nil || strings.TrimSpace(*req.Reason) == "" {
			return nil, apperr.ErrReasonRequired
		}
	}

	result, err := repo.Transition(checkoutRepo.TransitionParams{
		OrderID:     req.OrderID,
		FromStatus:  from,
		ToStatus:    to,
		ActorUserID: req.ActorUserID,
		Reason:      req.Reason,
	})
	if err != nil {
		return nil, err
	}

	if !result.NoOp {
		sendStatusMail(mailer, result, req.Reason)
	}
	return result, nil
}

// sendStatusMail dispatches the transition notice detached from the
// transition itself; failures are logged and swallowed.
func sendStatusMail(mailer notify.EmailService, result *checkoutRepo.TransitionResult, reason *string) {
	if result.CustomerEmail == nil {
		return
	}
	email := *result.CustomerEmail
	from := string(result.FromStatus)
	mail := notify.RenderOrderStatusUpdated(result.OrderID, &from, string(result.ToStatus), reason)
	orderID := result.OrderID
	go func() {
		if err := mailer.SendEmail(email, mail.Subject, mail.HTML, mail.Text); err != nil {
			log.Printf("order status email failed: order=%s err=%v", orderID, err)
		}
	}()
}

// RunExpirationSweep forces every overdue PENDING_PAYMENT order through the
// expiry transition. Each order is independent: a stale or already-moved row
// is logged and skipped, never aborting the batch.
func RunExpirationSweep(repo *checkoutRepo.CheckoutRepository, mailer notify.EmailService) (int, error) {
	ids, err := repo.FindExpired(Now())
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, orderID := range ids {
		reason := reasonExpiredUnpaid
		result, err := repo.Transition(checkoutRepo.TransitionParams{
			OrderID:    orderID,
			FromStatus: checkoutEntity.StatusPendingPayment,
			ToStatus:   checkoutEntity.StatusCancelledExpired,
			Reason:     &reason,
		})
		if err != nil {
			log.Printf("expiration transition failed: order=%s err=%v", orderID, err)
			continue
		}
		expired++
		sendStatusMail(mailer, result, &reason)
	}
	return expired, nil
}
