package orders

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cardbase.GO/api"
	"cardbase.GO/core/apperr"
	checkoutRepo "cardbase.GO/model/repository/checkout"
	"cardbase.GO/service/notify"
	orderService "cardbase.GO/service/order"
)

func init() {
	api.RegisterModule(RegisterOrderRoutes)
}

// RegisterOrderRoutes mounts the back-office order grid, transitions and the
// manual expiration trigger.
func RegisterOrderRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, err := checkoutRepo.NewCheckoutRepository(db)
	if err != nil {
		panic("api/orders: " + err.Error())
	}
	mailer := notify.NewFromEnv()

	g := apiGroup.Group("/orders")

	// GET /api/orders – admin grid with search, status filter and sorting
	g.GET("", func(c echo.Context) error {
		page, _ := strconv.Atoi(c.QueryParam("page"))
		if page < 1 {
			page = 1
		}
		pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
		if pageSize < 1 || pageSize > 100 {
			pageSize = 20
		}
		items, total, err := repo.ListAdminOrders(checkoutRepo.AdminListParams{
			Page:      page,
			PageSize:  pageSize,
			Query:     c.QueryParam("q"),
			Status:    c.QueryParam("status"),
			Sort:      c.QueryParam("sort"),
			Direction: c.QueryParam("direction"),
		})
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"items": items, "total": total, "page": page, "pageSize": pageSize,
		})
	})

	// GET /api/orders/:id – unscoped order detail with timeline
	g.GET("/:id", func(c echo.Context) error {
		detail, err := repo.GetAdminOrder(c.Param("id"))
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		if detail == nil {
			return api.Fail(c, apperr.ErrOrderNotFound, apperr.ErrOrderNotFound)
		}
		return c.JSON(http.StatusOK, detail)
	})

	// POST /api/orders/:id/status – guarded transition
	g.POST("/:id/status", func(c echo.Context) error {
		var body struct {
			Status string  `json:"status"`
			Reason *string `json:"reason"`
		}
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		var actor *string
		if id := api.UserID(c); id != "" {
			actor = &id
		}
		result, err := orderService.TransitionOrderStatus(repo, mailer, orderService.TransitionRequest{
			OrderID:     c.Param("id"),
			ToStatus:    body.Status,
			ActorUserID: actor,
			Reason:      body.Reason,
		})
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, result)
	})

	// POST /api/orders/expiration/run – force a sweep outside the schedule
	g.POST("/expiration/run", func(c echo.Context) error {
		expired, err := orderService.RunExpirationSweep(repo, mailer)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"expired": expired})
	})
}
