package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/talkincode/cafeorder/internal/order"
	"github.com/talkincode/cafeorder/internal/webserver"
)

// Register wires every resource's routes onto the web server.
func Register() {
	registerAuthRoutes()
	registerCategoryRoutes()
	registerProductRoutes()
	registerOrderRoutes()
	registerOrderDetailRoutes()
}

func ok(c echo.Context, data interface{}, message string) error {
	return webserver.Ok(c, data, message)
}

func fail(c echo.Context, status int, message string) error {
	return webserver.Fail(c, status, message)
}

// failErr maps core errors onto the envelope: validation and business-rule
// faults become 400, missing entities 404, anything else is a storage fault
// reported as 500 with a generic message.
func failErr(c echo.Context, err error) error {
	switch {
	case order.IsValidation(err):
		return fail(c, http.StatusBadRequest, err.Error())
	case order.IsNotFound(err):
		return fail(c, http.StatusNotFound, err.Error())
	default:
		zap.L().Error("request failed",
			zap.String("path", c.Request().URL.Path), zap.Error(err))
		return fail(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}

// GetDB returns the shared database handle.
func GetDB(c echo.Context) *gorm.DB {
	return webserver.GetDB(c)
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}
