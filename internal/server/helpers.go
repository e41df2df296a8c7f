package server

import (
	"strconv"

	"campusboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// parsePagination reads limit/offset query params with sane bounds.
func parsePagination(c *fiber.Ctx) (limit, offset int) {
	limit = c.QueryInt("limit", defaultPageSize)
	if limit < 1 || limit > maxPageSize {
		limit = defaultPageSize
	}
	offset = c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// parseID parses a positive uint path parameter.
func parseID(c *fiber.Ctx, name string) (uint, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewValidationError("Invalid " + name)
	}
	return uint(id), nil
}

// principalFrom returns the acting principal stored by AuthRequired.
func principalFrom(c *fiber.Ctx) models.Principal {
	if p, ok := c.Locals("principal").(models.Principal); ok {
		return p
	}
	return models.Principal{}
}
