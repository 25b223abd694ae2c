// handlers/cleanup.go - Orphan maintenance for admins
package handlers

import (
	"scripturedash/services"
	"scripturedash/utils"

	"github.com/gofiber/fiber/v2"
)

// GetCleanupStats reports current orphans and the last background sweep
// GET /api/admin/cleanup/stats
func GetCleanupStats(c *fiber.Ctx) error {
	counts, err := corpusService.CountOrphans()
	if err != nil {
		return utils.ServiceError(c, err)
	}

	stats := fiber.Map{"orphans": counts, "lastRun": nil}
	if svc := services.GetCleanupService(); svc != nil {
		if at, last := svc.LastRun(); !at.IsZero() {
			stats["lastRun"] = fiber.Map{"at": at, "removed": last}
		}
	}
	return utils.Success(c, stats)
}

// ManualCleanup deletes orphaned chapters and verses now
// POST /api/admin/cleanup/manual
func ManualCleanup(c *fiber.Ctx) error {
	removed, err := corpusService.PurgeOrphans()
	if err != nil {
		return utils.ServiceError(c, err)
	}
	return utils.Success(c, fiber.Map{"removed": removed})
}
