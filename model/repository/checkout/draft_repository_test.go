package checkout

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	checkoutEntity "cardbase.GO/model/entity/checkout"
	inventoryEntity "cardbase.GO/model/entity/inventory"
)

func testDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&inventoryEntity.ReadModelInventory{},
		&inventoryEntity.InventoryAdjustment{},
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
	return db
}

func testRepo(t *testing.T) (*CheckoutRepository, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	repo, err := NewCheckoutRepository(db)
	if err != nil {
		t.Fatalf("NewCheckoutRepository: %v", err)
	}
	return repo, db
}

func seedProduct(t *testing.T, db *gorm.DB, id string, available int, price float64) {
	t.Helper()
	now := time.Now()
	state := inventoryEntity.State(available, &now)
	row := inventoryEntity.ReadModelInventory{
		ProductID:         id,
		Available:         available,
		Price:             &price,
		AvailabilityState: &state,
		LastSyncedAt:      &now,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestCreateOrUpdateDraft_DropsUnhonorableLines(t *testing.T) {
	repo, db := testRepo(t)
	seedProduct(t, db, "A", 10, 150)
	seedProduct(t, db, "B", 2, 80)

	result, err := repo.CreateOrUpdateDraft("user-1", []ItemInput{
		{ProductID: "A", Quantity: 2},
		{ProductID: "B", Quantity: 3},
		{ProductID: "ghost", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("CreateOrUpdateDraft: %v", err)
	}
	if result.DraftID == "" {
		t.Error("no draft id")
	}
	if len(result.Items) != 1 || result.Items[0].ProductID != "A" {
		t.Fatalf("accepted = %+v, want only A", result.Items)
	}
	if result.Items[0].PriceSnapshot != 150 || result.Items[0].Currency != "MXN" {
		t.Errorf("snapshot = %+v", result.Items[0])
	}

	reasons := map[string]string{}
	for _, rm := range result.RemovedItems {
		reasons[rm.ProductID] = rm.Reason
	}
	if reasons["B"] != RemovedInsufficient {
		t.Errorf("B removed as %q, want insufficient", reasons["B"])
	}
	if reasons["ghost"] != RemovedMissing {
		t.Errorf("ghost removed as %q, want missing", reasons["ghost"])
	}
}

func TestCreateOrUpdateDraft_ReplacesInPlace(t *testing.T) {
	repo, db := testRepo(t)
	seedProduct(t, db, "A", 10, 150)
	seedProduct(t, db, "B", 10, 80)

	first, err := repo.CreateOrUpdateDraft("user-1", []ItemInput{{ProductID: "A", Quantity: 1}})
	if err != nil {
		t.Fatalf("first save: %v", err)
	}
	second, err := repo.CreateOrUpdateDraft("user-1", []ItemInput{{ProductID: "B", Quantity: 2}})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if first.DraftID != second.DraftID {
		t.Errorf("draft replaced instead of updated: %s vs %s", first.DraftID, second.DraftID)
	}

	var count int64
	db.Model(&checkoutEntity.PreorderDraft{}).Where("user_id = ?", "user-1").Count(&count)
	if count != 1 {
		t.Errorf("draft rows = %d, want 1", count)
	}

	var items []checkoutEntity.PreorderDraftItem
	db.Where("draft_id = ?", second.DraftID).Find(&items)
	if len(items) != 1 || items[0].ProductID != "B" {
		t.Errorf("items = %+v, want only B", items)
	}
}

func TestCreateOrUpdateDraft_DraftsAreIndependentPerUser(t *testing.T) {
	repo, db := testRepo(t)
	seedProduct(t, db, "A", 10, 150)

	one, _ := repo.CreateOrUpdateDraft("user-1", []ItemInput{{ProductID: "A", Quantity: 1}})
	two, _ := repo.CreateOrUpdateDraft("user-2", []ItemInput{{ProductID: "A", Quantity: 2}})
	if one.DraftID == two.DraftID {
		t.Error("users share a draft")
	}
}

func TestRevalidateItems_DoesNotPersist(t *testing.T) {
	repo, db := testRepo(t)
	seedProduct(t, db, "A", 1, 150)

	result, err := repo.RevalidateItems([]ItemInput{
		{ProductID: "A", Quantity: 1},
		{ProductID: "gone", Quantity: 1},
	})
	if err != nil {
		t.Fatalf("RevalidateItems: %v", err)
	}
	if len(result.Items) != 1 || len(result.RemovedItems) != 1 {
		t.Errorf("result = %+v", result)
	}

	var count int64
	db.Model(&checkoutEntity.PreorderDraft{}).Count(&count)
	if count != 0 {
		t.Errorf("revalidate persisted %d drafts", count)
	}
}

func TestGetActiveDraft(t *testing.T) {
	repo, db := testRepo(t)
	name := "Pikachu Promo"
	price := 45.0
	now := time.Now()
	db.Create(&inventoryEntity.ReadModelInventory{
		ProductID: "A", DisplayName: &name, Available: 5, Price: &price, LastSyncedAt: &now,
	})

	if draft, err := repo.GetActiveDraft("user-1"); err != nil || draft != nil {
		t.Fatalf("empty GetActiveDraft = %v, %v, want nil, nil", draft, err)
	}

	saved, err := repo.CreateOrUpdateDraft("user-1", []ItemInput{{ProductID: "A", Quantity: 2}})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	draft, err := repo.GetActiveDraft("user-1")
	if err != nil {
		t.Fatalf("GetActiveDraft: %v", err)
	}
	if draft == nil || draft.DraftID != saved.DraftID {
		t.Fatalf("draft = %+v", draft)
	}
	if len(draft.Items) != 1 {
		t.Fatalf("items = %+v", draft.Items)
	}
	item := draft.Items[0]
	if item.Quantity != 2 || item.PriceSnapshot != 45 {
		t.Errorf("item = %+v", item)
	}
	if item.Name == nil || *item.Name != "Pikachu Promo" {
		t.Errorf("metadata not joined: %+v", item)
	}
}
