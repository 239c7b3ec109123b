package inventory

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"cardbase.GO/core/apperr"
	inventoryEntity "cardbase.GO/model/entity/inventory"
	inventoryRepo "cardbase.GO/model/repository/inventory"
)

func testRepo(t *testing.T) (*gorm.DB, *inventoryRepo.InventoryRepository) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&inventoryEntity.ReadModelInventory{},
		&inventoryEntity.InventoryAdjustment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo, err := inventoryRepo.NewInventoryRepository(db)
	if err != nil {
		t.Fatalf("NewInventoryRepository: %v", err)
	}
	return db, repo
}

func seed(t *testing.T, db *gorm.DB, id string, available int) {
	t.Helper()
	now := time.Now()
	state := inventoryEntity.State(available, &now)
	row := inventoryEntity.ReadModelInventory{
		ProductID:         id,
		Available:         available,
		AvailabilityState: &state,
		LastSyncedAt:      &now,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("seed %s: %v", id, err)
	}
}

func TestListInventory_NormalizesPaging(t *testing.T) {
	db, repo := testRepo(t)
	seed(t, db, "p1", 5)
	seed(t, db, "p2", 0)

	resp, err := ListInventory(repo, ListRequest{Page: -3, PageSize: 999})
	if err != nil {
		t.Fatalf("ListInventory: %v", err)
	}
	if resp.Page != 1 || resp.PageSize != 20 {
		t.Errorf("page/pageSize = %d/%d, want 1/20", resp.Page, resp.PageSize)
	}
	if resp.Total != 2 || len(resp.Items) != 2 {
		t.Errorf("total=%d items=%d, want 2/2", resp.Total, len(resp.Items))
	}
}

func TestAdjustInventory_Validation(t *testing.T) {
	_, repo := testRepo(t)

	cases := []struct {
		name string
		req  AdjustRequest
		want *apperr.Error
	}{
		{"missing product", AdjustRequest{Delta: 1, Reason: "count"}, apperr.ErrInventoryInvalid},
		{"zero delta", AdjustRequest{ProductID: "p1", Reason: "count"}, apperr.ErrInventoryInvalid},
		{"blank reason", AdjustRequest{ProductID: "p1", Delta: 1, Reason: "   "}, apperr.ErrReasonRequired},
	}
	for _, tc := range cases {
		if _, err := AdjustInventory(repo, tc.req); !apperr.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
}

func TestAdjustInventory_TrimsReason(t *testing.T) {
	db, repo := testRepo(t)
	seed(t, db, "p1", 4)

	res, err := AdjustInventory(repo, AdjustRequest{
		ProductID:   "p1",
		Delta:       -1,
		Reason:      "  damaged sleeve  ",
		ActorUserID: "admin-1",
	})
	if err != nil {
		t.Fatalf("AdjustInventory: %v", err)
	}
	if res.Item.Available != 3 {
		t.Errorf("available = %d, want 3", res.Item.Available)
	}
	if res.Adjustment.Reason != "damaged sleeve" {
		t.Errorf("reason = %q, want trimmed", res.Adjustment.Reason)
	}
	if res.Adjustment.ActorUserID != "admin-1" {
		t.Errorf("actor = %q, want admin-1", res.Adjustment.ActorUserID)
	}
}
