package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const defaultHistoryLimit = 50

// limitQuery reads the ?limit= parameter, clamped to a sane range.
func limitQuery(c *fiber.Ctx) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > 500 {
		return 500
	}
	return limit
}
