package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/munero-platform/analytics-core-be/internal/models"
	"github.com/munero-platform/analytics-core-be/internal/services"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(service *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: service}
}

// POST /api/dashboard/trend?granularity=day|month|year
func (h *DashboardHandler) Trend(c *fiber.Ctx) error {
	var req models.TrendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := h.dashboardService.Trend(c.Context(), req, c.Query("granularity"))
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(resp)
}

// POST /api/dashboard/headline
func (h *DashboardHandler) Headline(c *fiber.Ctx) error {
	var req models.HeadlineRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	resp, err := h.dashboardService.Headline(c.Context(), req)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(resp)
}

// GET /api/dashboard/filter-options
func (h *DashboardHandler) FilterOptions(c *fiber.Ctx) error {
	resp, err := h.dashboardService.FilterOptions(c.Context())
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(resp)
}
