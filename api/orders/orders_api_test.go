package orders

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	checkoutEntity "cardbase.GO/model/entity/checkout"
	inventoryEntity "cardbase.GO/model/entity/inventory"
	checkoutRepo "cardbase.GO/model/repository/checkout"
)

func testServer(t *testing.T) (*echo.Echo, *checkoutRepo.CheckoutRepository, *gorm.DB) {
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

	e := echo.New()
	apiGroup := e.Group("/api")
	RegisterOrderRoutes(apiGroup, db)

	repo, err := checkoutRepo.NewCheckoutRepository(db)
	if err != nil {
		t.Fatalf("NewCheckoutRepository: %v", err)
	}
	return e, repo, db
}

func seedOrder(t *testing.T, repo *checkoutRepo.CheckoutRepository, db *gorm.DB) *checkoutRepo.CreatedOrder {
	t.Helper()
	now := time.Now()
	price := 60.0
	db.Create(&inventoryEntity.ReadModelInventory{
		ProductID: "A", Available: 10, Price: &price, LastSyncedAt: &now,
	})
	draft, err := repo.CreateOrUpdateDraft("user-1", []checkoutRepo.ItemInput{{ProductID: "A", Quantity: 1}})
	if err != nil {
		t.Fatalf("draft: %v", err)
	}
	created, err := repo.CreateOrder(checkoutRepo.CreateOrderParams{
		UserID:        "user-1",
		DraftID:       draft.DraftID,
		PaymentMethod: checkoutEntity.PaymentPayInStore,
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	return created
}

func postStatus(e *echo.Echo, orderID string, body map[string]interface{}) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/orders/"+orderID+"/status", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "admin-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestStatusEndpoint_AliasAndReason(t *testing.T) {
	e, repo, db := testServer(t)
	created := seedOrder(t, repo, db)

	// manual cancellation without a reason is refused
	rec := postStatus(e, created.OrderID, map[string]interface{}{"status": "CANCELED"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("reasonless cancel = %d, want 400", rec.Code)
	}

	rec = postStatus(e, created.OrderID, map[string]interface{}{
		"status": "CANCELED",
		"reason": "customer request",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel = %d body=%s", rec.Code, rec.Body.String())
	}

	var order checkoutEntity.OnlineOrder
	db.First(&order, "id = ?", created.OrderID)
	if order.Status != string(checkoutEntity.StatusCancelledManual) {
		t.Errorf("stored status = %s, want CANCELLED_MANUAL (alias folded)", order.Status)
	}
	if order.CancelledByUserID == nil || *order.CancelledByUserID != "admin-1" {
		t.Errorf("cancelled_by_user_id = %v", order.CancelledByUserID)
	}
}

func TestStatusEndpoint_InvalidTransition(t *testing.T) {
	e, repo, db := testServer(t)
	created := seedOrder(t, repo, db)

	rec := postStatus(e, created.OrderID, map[string]interface{}{"status": "SHIPPED"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("PENDING_PAYMENT -> SHIPPED = %d, want 400", rec.Code)
	}

	rec = postStatus(e, "missing-order", map[string]interface{}{"status": "PAID"})
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing order = %d, want 404", rec.Code)
	}
}

func TestAdminListAndDetail(t *testing.T) {
	e, repo, db := testServer(t)
	created := seedOrder(t, repo, db)

	req := httptest.NewRequest(http.MethodGet, "/api/orders?page=1&pageSize=10", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list = %d", rec.Code)
	}
	var list struct {
		Total int64 `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &list)
	if list.Total != 1 {
		t.Errorf("total = %d, want 1", list.Total)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders/"+created.OrderID, nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("detail = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/orders?status=BOGUS", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status filter = %d, want 400", rec.Code)
	}
}

func TestExpirationRunEndpoint(t *testing.T) {
	e, repo, db := testServer(t)
	created := seedOrder(t, repo, db)

	// force the deadline into the past
	db.Model(&checkoutEntity.OnlineOrder{}).
		Where("id = ?", created.OrderID).
		Update("expires_at", time.Now().Add(-time.Hour))

	req := httptest.NewRequest(http.MethodPost, "/api/orders/expiration/run", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("run = %d body=%s", rec.Code, rec.Body.String())
	}
	var result struct {
		Expired int `json:"expired"`
	}
	json.Unmarshal(rec.Body.Bytes(), &result)
	if result.Expired != 1 {
		t.Errorf("expired = %d, want 1", result.Expired)
	}

	var order checkoutEntity.OnlineOrder
	db.First(&order, "id = ?", created.OrderID)
	if order.Status != string(checkoutEntity.StatusCancelledExpired) {
		t.Errorf("status = %s, want CANCELLED_EXPIRED", order.Status)
	}
}
