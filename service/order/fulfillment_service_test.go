package order

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"cardbase.GO/core/apperr"
	checkoutEntity "cardbase.GO/model/entity/checkout"
	inventoryEntity "cardbase.GO/model/entity/inventory"
	checkoutRepo "cardbase.GO/model/repository/checkout"
	"cardbase.GO/service/notify"
)

func testRepo(t *testing.T) (*checkoutRepo.CheckoutRepository, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&inventoryEntity.ReadModelInventory{},
		&checkoutEntity.PreorderDraft{},
		&checkoutEntity.PreorderDraftItem{},
		&checkoutEntity.PickupBranch{},
		&checkoutEntity.OnlineOrder{},
		&checkoutEntity.OnlineOrderItem{},
		&checkoutEntity.InventoryReservation{},
		&checkoutEntity.OnlineOrderStatusLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo, err := checkoutRepo.NewCheckoutRepository(db)
	if err != nil {
		t.Fatalf("NewCheckoutRepository: %v", err)
	}
	return repo, db
}

func seedOrder(t *testing.T, repo *checkoutRepo.CheckoutRepository, db *gorm.DB, branchID *string) *checkoutRepo.CreatedOrder {
	t.Helper()
	now := time.Now()
	price := 100.0
	state := inventoryEntity.StateAvailable
	db.Create(&inventoryEntity.ReadModelInventory{
		ProductID: "A", Available: 10, Price: &price,
		AvailabilityState: &state, LastSyncedAt: &now,
	})
	if branchID != nil {
		db.Create(&checkoutEntity.PickupBranch{ID: *branchID, Name: "Centro", Active: true})
	}

	draft, err := repo.CreateOrUpdateDraft("user-1", []checkoutRepo.ItemInput{{ProductID: "A", Quantity: 2}})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	created, err := repo.CreateOrder(checkoutRepo.CreateOrderParams{
		UserID:         "user-1",
		DraftID:        draft.DraftID,
		PaymentMethod:  checkoutEntity.PaymentPayInStore,
		PickupBranchID: branchID,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return created
}

func TestTransitionOrderStatus_LegacyAlias(t *testing.T) {
	repo, db := testRepo(t)
	created := seedOrder(t, repo, db, nil)
	mailer := &notify.LogService{}

	reason := "out of print"
	result, err := TransitionOrderStatus(repo, mailer, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: "CANCELED",
		Reason:   &reason,
	})
	if err != nil {
		t.Fatalf("TransitionOrderStatus: %v", err)
	}
	if result.ToStatus != checkoutEntity.StatusCancelledManual {
		t.Errorf("stored status = %s, want CANCELLED_MANUAL", result.ToStatus)
	}
}

func TestTransitionOrderStatus_UnknownStatus(t *testing.T) {
	repo, db := testRepo(t)
	created := seedOrder(t, repo, db, nil)

	_, err := TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: "TELEPORTED",
	})
	if !apperr.Is(err, apperr.ErrOrderStatusInvalid) {
		t.Fatalf("unknown status = %v, want status invalid", err)
	}
}

func TestTransitionOrderStatus_InvalidEdge(t *testing.T) {
	repo, db := testRepo(t)
	created := seedOrder(t, repo, db, nil)

	_, err := TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: string(checkoutEntity.StatusShipped),
	})
	if !apperr.Is(err, apperr.ErrOrderTransitionInvalid) {
		t.Fatalf("PENDING_PAYMENT -> SHIPPED = %v, want transition invalid", err)
	}
}

func TestTransitionOrderStatus_PickupGuard(t *testing.T) {
	repo, db := testRepo(t)

	// no pickup branch: READY_FOR_PICKUP refused
	created := seedOrder(t, repo, db, nil)
	_, err := TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: string(checkoutEntity.StatusReadyForPickup),
	})
	if !apperr.Is(err, apperr.ErrOrderTransitionInvalid) {
		t.Fatalf("no-branch pickup = %v, want transition invalid", err)
	}
}

func TestTransitionOrderStatus_PickupWithBranch(t *testing.T) {
	repo, db := testRepo(t)
	branch := "branch-1"
	created := seedOrder(t, repo, db, &branch)

	result, err := TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: string(checkoutEntity.StatusReadyForPickup),
	})
	if err != nil {
		t.Fatalf("TransitionOrderStatus: %v", err)
	}
	if result.ToStatus != checkoutEntity.StatusReadyForPickup {
		t.Errorf("status = %s", result.ToStatus)
	}
}

func TestTransitionOrderStatus_ReasonGuard(t *testing.T) {
	repo, db := testRepo(t)
	created := seedOrder(t, repo, db, nil)

	_, err := TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: string(checkoutEntity.StatusCancelledManual),
	})
	if !apperr.Is(err, apperr.ErrReasonRequired) {
		t.Fatalf("no reason = %v, want reason required", err)
	}

	blank := "   "
	_, err = TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: string(checkoutEntity.StatusCancelledManual),
		Reason:   &blank,
	})
	if !apperr.Is(err, apperr.ErrReasonRequired) {
		t.Fatalf("blank reason = %v, want reason required", err)
	}
}

func TestTransitionOrderStatus_SameStateNoOp(t *testing.T) {
	repo, db := testRepo(t)
	created := seedOrder(t, repo, db, nil)

	result, err := TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  created.OrderID,
		ToStatus: string(checkoutEntity.StatusPendingPayment),
	})
	if err != nil {
		t.Fatalf("TransitionOrderStatus: %v", err)
	}
	if !result.NoOp {
		t.Error("same-state transition not a no-op")
	}
}

func TestTransitionOrderStatus_NotFound(t *testing.T) {
	repo, _ := testRepo(t)

	_, err := TransitionOrderStatus(repo, &notify.LogService{}, TransitionRequest{
		OrderID:  "missing",
		ToStatus: string(checkoutEntity.StatusPaid),
	})
	if !apperr.Is(err, apperr.ErrOrderNotFound) {
		t.Fatalf("missing order = %v, want not found", err)
	}
}

func TestRunExpirationSweep(t *testing.T) {
	repo, db := testRepo(t)
	created := seedOrder(t, repo, db, nil)

	// nothing due yet
	expired, err := RunExpirationSweep(repo, &notify.LogService{})
	if err != nil {
		t.Fatalf("RunExpirationSweep: %v", err)
	}
	if expired != 0 {
		t.Errorf("expired = %d, want 0", expired)
	}

	// jump past the payment deadline
	oldNow := Now
	Now = func() time.Time {
		return time.Now().Add((checkoutRepo.ExpirationDays + 1) * 24 * time.Hour)
	}
	defer func() { Now = oldNow }()

	expired, err = RunExpirationSweep(repo, &notify.LogService{})
	if err != nil {
		t.Fatalf("RunExpirationSweep: %v", err)
	}
	if expired != 1 {
		t.Fatalf("expired = %d, want 1", expired)
	}

	var order checkoutEntity.OnlineOrder
	db.First(&order, "id = ?", created.OrderID)
	if order.Status != string(checkoutEntity.StatusCancelledExpired) {
		t.Errorf("status = %s, want CANCELLED_EXPIRED", order.Status)
	}

	// stock restored
	qty, _ := repo.Inventory().GetQuantity("A")
	if qty != 10 {
		t.Errorf("available = %d, want 10", qty)
	}

	// log row carries the sweep reason
	var logs []checkoutEntity.OnlineOrderStatusLog
	db.Where("order_id = ? AND to_status = ?", created.OrderID, string(checkoutEntity.StatusCancelledExpired)).Find(&logs)
	if len(logs) != 1 || logs[0].Reason == nil || *logs[0].Reason != "expired_unpaid" {
		t.Errorf("sweep log = %+v", logs)
	}

	// idempotent: second sweep finds nothing
	expired, err = RunExpirationSweep(repo, &notify.LogService{})
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if expired != 0 {
		t.Errorf("second sweep expired = %d, want 0", expired)
	}
}
