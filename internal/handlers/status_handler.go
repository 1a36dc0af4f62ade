package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// StatusHandler reports server health.
type StatusHandler struct {
	now func() time.Time
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler() *StatusHandler {
	return &StatusHandler{now: time.Now}
}

// RegisterRoutes registers the status route.
func (h *StatusHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/status", h.HandleStatus)
}

// HandleStatus returns a liveness message.
func (h *StatusHandler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"message":   "KICKS server is running",
		"timestamp": h.now().Format(time.RFC3339),
	})
}
