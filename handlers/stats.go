// handlers/stats.go - Dashboard stats
package handlers

import (
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
)

// GetStats returns corpus counts and the last update time
// GET /api/stats
func GetStats(c *fiber.Ctx) error {
	stats, err := corpusService.Stats()
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, stats)
}
