package handlers

import (
	"github.com/gofiber/fiber/v2"

	"sjaggi1/resume-parser/internal/services"
)

type HealthHandler struct {
	healthService *services.HealthService
}

func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{healthService: healthService}
}

// HandleHealth handles GET /health. It answers 200 even when a dependency is
// down; the per-service map says which one.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(h.healthService.Report(c.UserContext()))
}
