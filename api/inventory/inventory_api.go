package inventory

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cardbase.GO/api"
	"cardbase.GO/core/apperr"
	inventoryRepo "cardbase.GO/model/repository/inventory"
	inventoryService "cardbase.GO/service/inventory"
)

func init() {
	api.RegisterModule(RegisterInventoryRoutes)
}

// RegisterInventoryRoutes mounts the back-office inventory grid and the
// manual adjustment endpoint.
func RegisterInventoryRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, err := inventoryRepo.NewInventoryRepository(db)
	if err != nil {
		panic("api/inventory: " + err.Error())
	}

	g := apiGroup.Group("/inventory")

	// GET /api/inventory – paged listing with contains-search
	g.GET("", func(c echo.Context) error {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
		resp, err := inventoryService.ListInventory(repo, inventoryService.ListRequest{
			Page:      page,
			PageSize:  pageSize,
			Query:     c.QueryParam("q"),
			Sort:      c.QueryParam("sort"),
			Direction: c.QueryParam("direction"),
		})
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, resp)
	})

	// POST /api/inventory/adjust – signed manual correction with audit trail
	g.POST("/adjust", func(c echo.Context) error {
		var body inventoryService.AdjustRequest
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		body.ActorUserID = api.UserID(c)
		result, err := inventoryService.AdjustInventory(repo, body)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"item":       result.Item,
			"adjustment": result.Adjustment,
		})
	})
}
