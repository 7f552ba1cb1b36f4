package handler

import (
	"net/http"

	"whatsfresh/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Health handles GET /health. The service is healthy while the database
// answers a ping.
func (h *Handler) Health(c echo.Context) error {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		logger.FromEcho(c).Error("Health check failed", zap.Error(err))
		return c.JSON(http.StatusServiceUnavailable, echo.Map{
			"status":   "unavailable",
			"database": "down",
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":   "ok",
		"database": "up",
	})
}
