package sync

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cardbase.GO/api"
	"cardbase.GO/core/apperr"
	syncRepo "cardbase.GO/model/repository/sync"
	syncService "cardbase.GO/service/sync"
)

func init() {
	api.RegisterModule(RegisterSyncRoutes)
}

// RegisterSyncRoutes mounts the POS synchronization surface: the outbound
// event ledger, inbound in-store sales, and the product read model.
func RegisterSyncRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, err := syncRepo.NewSyncRepository(db)
	if err != nil {
		panic("api/sync: " + err.Error())
	}

	g := apiGroup.Group("/sync")

	// POST /api/sync/events – append a batch; replays report as duplicates
	g.POST("/events", func(c echo.Context) error {
		var body struct {
			Events []syncRepo.EventInput `json:"events"`
		}
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		result, err := syncService.RecordEvents(repo, body.Events)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, result)
	})

	// GET /api/sync/events/pending?posId=&since= – undelivered events, oldest first
	g.GET("/events/pending", func(c echo.Context) error {
		events, err := syncService.GetPendingEvents(repo, c.QueryParam("posId"), c.QueryParam("since"))
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"events": events})
	})

	// POST /api/sync/events/ack – mark events delivered to one terminal
	g.POST("/events/ack", func(c echo.Context) error {
		var body syncService.AckRequest
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		if err := syncService.AcknowledgeEvents(repo, body); err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"acknowledged": len(body.EventIDs)})
	})

	// POST /api/sync/orders – in-store sale; replayed orderIds are a no-op
	g.POST("/orders", func(c echo.Context) error {
		var body syncService.PosOrderRequest
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		result, err := syncService.CreatePosOrder(repo, body)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		status := http.StatusCreated
		if result.Duplicate {
			status = http.StatusOK
		}
		return c.JSON(status, result)
	})

	// GET /api/sync/products – POS product read model (public)
	g.GET("/products", func(c echo.Context) error {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
		if pageSize < 1 || pageSize > 200 {
			pageSize = 50
		}
		params := syncRepo.ReadProductsParams{
			Page:        page,
			PageSize:    pageSize,
			ID:          c.QueryParam("id"),
			GameID:      c.QueryParam("gameId"),
			CategoryID:  c.QueryParam("categoryId"),
			ExpansionID: c.QueryParam("expansionId"),
		}
		if raw := c.QueryParam("priceMin"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				params.PriceMin = &v
			}
		}
		if raw := c.QueryParam("priceMax"); raw != "" {
			if v, err := strconv.ParseFloat(raw, 64); err == nil {
				params.PriceMax = &v
			}
		}
		items, total, err := syncService.ReadProducts(repo, params)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"items": items, "total": total, "page": params.Page, "pageSize": params.PageSize,
		})
	})
}
