package branches

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"cardbase.GO/api"
	"cardbase.GO/core/apperr"
	checkoutRepo "cardbase.GO/model/repository/checkout"
)

func init() {
	api.RegisterModule(RegisterBranchRoutes)
}

// RegisterBranchRoutes mounts the pickup branch selector (public).
func RegisterBranchRoutes(apiGroup *echo.Group, db *gorm.DB) {
	repo, err := checkoutRepo.NewCheckoutRepository(db)
	if err != nil {
		panic("api/branches: " + err.Error())
	}

	// GET /api/branches – active branches, alphabetical
	apiGroup.GET("/branches", func(c echo.Context) error {
		branches, err := repo.ListBranches()
		if err != nil {
			return api.Fail(c, err, apperr.ErrServerError)
		}
		return c.JSON(http.StatusOK, echo.Map{"branches": branches})
	})
}
