package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/arcanewagers/Auth/internal/db"
)

// HealthHandler reports process and database health.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(gormDB *gorm.DB) *HealthHandler {
	return &HealthHandler{db: gormDB}
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

// Check godoc
// @Summary Health check with database connectivity
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Check(c echo.Context) error {
	dbStatus := "healthy"
	if err := db.Ping(c.Request().Context(), h.db); err != nil {
		dbStatus = "unhealthy"
	}
	return c.JSON(http.StatusOK, HealthResponse{
		Status:   "healthy",
		Database: dbStatus,
	})
}
