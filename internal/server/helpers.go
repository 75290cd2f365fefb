package server

import (
	"strconv"

	"soltip/internal/models"

	"github.com/gofiber/fiber/v2"
)

// parseID parses a positive integer path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name + " parameter")
	}
	return uint(id), nil
}

// parseLimit parses an optional ?limit= query parameter. Zero means
// "use the service default".
func parseLimit(c *fiber.Ctx) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}

// fail maps an error to its HTTP status and writes the JSON error body.
func fail(c *fiber.Ctx, err error) error {
	return models.RespondWithError(c, models.HTTPStatus(err), err)
}

func invalidBody() error {
	return models.NewValidationError("Invalid request body")
}
