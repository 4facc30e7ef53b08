package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Health answers liveness checks.  It does not touch Redis or the backend.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
