package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/munero-platform/analytics-core-be/internal/models"
	"github.com/munero-platform/analytics-core-be/internal/services"
)

type ChatHandler struct {
	chatService *services.ChatService
}

func NewChatHandler(service *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: service}
}

// POST /api/chat
// Pipeline failures come back as 200 with the error field set; only a
// malformed request body is a client error.
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req models.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	if strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "message is required",
		})
	}

	return c.JSON(h.chatService.Ask(c.Context(), req))
}
