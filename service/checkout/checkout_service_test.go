package checkout

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

func TestCreateDraft_Validation(t *testing.T) {
	repo, _ := testRepo(t)

	cases := []struct {
		name  string
		user  string
		items []checkoutRepo.ItemInput
	}{
		{"missing user", "", []checkoutRepo.ItemInput{{ProductID: "A", Quantity: 1}}},
		{"empty product", "user-1", []checkoutRepo.ItemInput{{ProductID: "", Quantity: 1}}},
		{"zero quantity", "user-1", []checkoutRepo.ItemInput{{ProductID: "A", Quantity: 0}}},
		{"negative quantity", "user-1", []checkoutRepo.ItemInput{{ProductID: "A", Quantity: -2}}},
	}
	for _, c := range cases {
		if _, err := CreateDraft(repo, c.user, c.items); !apperr.Is(err, apperr.ErrInvalidRequest) {
			t.Errorf("%s: err = %v, want invalid request", c.name, err)
		}
	}
}

func TestCreateOrder_RejectsUnsupportedPayment(t *testing.T) {
	repo, db := testRepo(t)
	now := time.Now()
	price := 50.0
	db.Create(&inventoryEntity.ReadModelInventory{
		ProductID: "A", Available: 5, Price: &price, LastSyncedAt: &now,
	})
	draft, err := CreateDraft(repo, "user-1", []checkoutRepo.ItemInput{{ProductID: "A", Quantity: 1}})
	if err != nil {
		t.Fatalf("CreateDraft: %v", err)
	}

	_, err = CreateOrder(repo, &notify.LogService{}, CreateOrderRequest{
		UserID:        "user-1",
		DraftID:       draft.DraftID,
		PaymentMethod: "CREDIT_CARD",
	})
	if !apperr.Is(err, apperr.ErrInvalidRequest) {
		t.Fatalf("card payment = %v, want invalid request", err)
	}
}

func TestCreateOrder_HappyPath(t *testing.T) {
	repo, db := testRepo(t)
	now := time.Now()
	price := 50.0
	db.Create(&inventoryEntity.ReadModelInventory{
		ProductID: "A", Available: 5, Price: &price, LastSyncedAt: &now,
	})
	draft, _ := CreateDraft(repo, "user-1", []checkoutRepo.ItemInput{{ProductID: "A", Quantity: 2}})

	created, err := CreateOrder(repo, &notify.LogService{}, CreateOrderRequest{
		UserID:        "user-1",
		DraftID:       draft.DraftID,
		PaymentMethod: checkoutEntity.PaymentPayInStore,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if created.Subtotal != 100 {
		t.Errorf("subtotal = %v, want 100", created.Subtotal)
	}
}
