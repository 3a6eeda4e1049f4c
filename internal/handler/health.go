package handler

import (
    "database/sql"
    "net/http"

    "github.com/labstack/echo/v4"
)

// HealthHandler answers liveness probes, including a database ping.
type HealthHandler struct {
    db *sql.DB
}

// NewHealthHandler returns a handler bound to the database pool.
func NewHealthHandler(db *sql.DB) *HealthHandler { return &HealthHandler{db: db} }

// Check reports ok when the database answers a ping.
func (h *HealthHandler) Check(c echo.Context) error {
    if err := h.db.PingContext(c.Request().Context()); err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "error": err.Error()})
    }
    return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
