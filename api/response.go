package api

import (
	"github.com/labstack/echo/v4"

	"cardbase.GO/core/apperr"
)

// Fail renders a domain error as its JSON envelope. Unknown errors collapse
// to the fallback so store internals never reach the wire.
func Fail(c echo.Context, err error, fallback *apperr.Error) error {
	ae := apperr.From(err, fallback)
	return c.JSON(ae.Status, echo.Map{
		"error": echo.Map{"code": ae.Code, "message": ae.Message},
	})
}

// UserID extracts the authenticated customer id forwarded by the gateway.
func UserID(c echo.Context) string {
	return c.Request().Header.Get("X-User-Id")
}
