package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manyinyire/fleetbackend/internal/pkg/statistics"
)

// HandleGetStatistics returns the cached fleet-wide dashboard numbers.
func HandleGetStatistics(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(statistics.GetStatistics())
}
