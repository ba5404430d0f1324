package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/munero-platform/analytics-core-be/internal/core/filters"
	"github.com/munero-platform/analytics-core-be/internal/core/sqlgate"
	"github.com/munero-platform/analytics-core-be/internal/shared/database"
)

// statusForError maps core errors to HTTP statuses. Driver errors keep a
// generic message so schema details never leak to clients.
func statusForError(err error) (int, string) {
	var invalid *filters.InvalidFilterError
	if errors.As(err, &invalid) {
		return fiber.StatusBadRequest, invalid.Error()
	}

	var unsafe *sqlgate.UnsafeQueryError
	if errors.As(err, &unsafe) {
		return fiber.StatusBadRequest, unsafe.Error()
	}

	var timeout *database.QueryTimeoutError
	if errors.As(err, &timeout) {
		return fiber.StatusGatewayTimeout, timeout.Error()
	}

	var exec *database.QueryExecutionError
	if errors.As(err, &exec) {
		return fiber.StatusBadRequest, "query execution failed"
	}

	return fiber.StatusInternalServerError, "internal error"
}

func errorJSON(c *fiber.Ctx, err error) error {
	status, msg := statusForError(err)
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
