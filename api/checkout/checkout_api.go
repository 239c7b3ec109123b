package checkout

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cardbase.GO/api"
	"cardbase.GO/core/apperr"
	checkoutRepo "cardbase.GO/model/repository/checkout"
	checkoutService "cardbase.GO/service/checkout"
	"cardbase.GO/service/notify"
)

func init() {
	api.RegisterModule(RegisterCheckoutRoutes)
}

// RegisterCheckoutRoutes mounts the customer-facing draft and order routes.
// The customer identity arrives in X-User-Id set by the gateway.
func RegisterCheckoutRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, err := checkoutRepo.NewCheckoutRepository(db)
	if err != nil {
		panic("api/checkout: " + err.Error())
	}
	mailer := notify.NewFromEnv()

	g := apiGroup.Group("/checkout")

	// POST /api/checkout/draft – replace the caller's active draft
	g.POST("/draft", func(c echo.Context) error {
		userID := api.UserID(c)
		if userID == "" {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		var body struct {
			Items []checkoutRepo.ItemInput `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		result, err := checkoutService.CreateDraft(repo, userID, body.Items)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, result)
	})

	// GET /api/checkout/draft – the caller's active draft, null when none
	g.GET("/draft", func(c echo.Context) error {
		userID := api.UserID(c)
		if userID == "" {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		draft, err := checkoutService.GetActiveDraft(repo, userID)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"draft": draft})
	})

	// POST /api/checkout/revalidate – stateless availability recheck
	g.POST("/revalidate", func(c echo.Context) error {
		var body struct {
			Items []checkoutRepo.ItemInput `json:"items"`
		}
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		result, err := checkoutService.Revalidate(repo, body.Items)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, result)
	})

	// POST /api/checkout/order – convert the draft into an order
	g.POST("/order", func(c echo.Context) error {
		userID := api.UserID(c)
		if userID == "" {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		var body struct {
			DraftID        string  `json:"draftId"`
			PaymentMethod  string  `json:"paymentMethod"`
			PickupBranchID *string `json:"pickupBranchId"`
			CustomerEmail  *string `json:"customerEmail"`
		}
		if err := c.Bind(&body); err != nil {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		created, err := checkoutService.CreateOrder(repo, mailer, checkoutService.CreateOrderRequest{
			UserID:         userID,
			DraftID:        body.DraftID,
			PaymentMethod:  body.PaymentMethod,
			PickupBranchID: body.PickupBranchID,
			CustomerEmail:  body.CustomerEmail,
		})
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		status := http.StatusCreated
		if created.AlreadyExisted {
			status = http.StatusOK
		}
		return c.JSON(status, created)
	})

	// GET /api/checkout/orders – the caller's orders, newest first
	g.GET("/orders", func(c echo.Context) error {
		userID := api.UserID(c)
		if userID == "" {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		page, pageSize := pagination(c, 20)
		items, total, err := repo.ListCustomerOrders(userID, page, pageSize)
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{
			"items": items, "total": total, "page": page, "pageSize": pageSize,
		})
	})

	// GET /api/checkout/orders/:id – owner-scoped order detail with timeline
	g.GET("/orders/:id", func(c echo.Context) error {
		userID := api.UserID(c)
		if userID == "" {
			return api.Fail(c, apperr.ErrInvalidRequest, apperr.ErrInvalidRequest)
		}
		detail, err := repo.GetCustomerOrder(userID, c.Param("id"))
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		if detail == nil {
			return api.Fail(c, apperr.ErrOrderNotFound, apperr.ErrOrderNotFound)
		}
		return c.JSON(http.StatusOK, detail)
	})
}

func pagination(c echo.Context, defaultSize int) (int, int) {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(c.QueryParam("pageSize"))
	if pageSize < 1 || pageSize > 100 {
		pageSize = defaultSize
	}
	return page, pageSize
}
