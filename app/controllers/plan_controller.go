package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/manyinyire/fleetbackend/internal/pkg/database"
	"github.com/manyinyire/fleetbackend/internal/pkg/subscription"
)

// HandleListPlans returns the effective configuration of every plan tier.
func HandleListPlans(c *fiber.Ctx) error {
	svc := subscription.NewServiceFromDB(database.GetDB())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"plans": svc.ListPlans(c.Context()),
	})
}

// HandleGetPlan returns the effective configuration for one plan tier.
func HandleGetPlan(c *fiber.Ctx) error {
	svc := subscription.NewServiceFromDB(database.GetDB())
	return c.Status(fiber.StatusOK).JSON(svc.GetPlanConfig(c.Context(), c.Params("plan")))
}

// HandleSeedPlans upserts the built-in plan defaults into persistence so
// admins can edit them as overrides.
func HandleSeedPlans(c *fiber.Ctx) error {
	svc := subscription.NewServiceFromDB(database.GetDB())
	if err := svc.SeedPlanConfigs(c.Context()); err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "seeded"})
}
