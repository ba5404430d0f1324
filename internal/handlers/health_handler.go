package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/munero-platform/analytics-core-be/internal/core/llm"
	"github.com/munero-platform/analytics-core-be/internal/models"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

type HealthHandler struct {
	db         *database.DB
	llmService *llm.Service
}

func NewHealthHandler(db *database.DB, llmService *llm.Service) *HealthHandler {
	return &HealthHandler{db: db, llmService: llmService}
}

// GET /api/health
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	resp := models.HealthResponse{
		Status:      "ok",
		Database:    "up",
		LLMProvider: h.llmService.GetProviderName(),
	}

	if err := h.db.PingContext(c.Context()); err != nil {
		resp.Status = "degraded"
		resp.Database = "down"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
