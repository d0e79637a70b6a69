package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/manyinyire/fleetbackend/internal/pkg/database"
	"github.com/manyinyire/fleetbackend/internal/pkg/subscription"
)

// HandleGetSubscription returns a tenant's subscription details.
func HandleGetSubscription(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	details, err := svc.GetSubscriptionDetails(c.Context(), tenantID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(details)
}

// HandleChangePlan moves a tenant to a new plan and/or billing cycle.
func HandleChangePlan(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		subscription.ChangePlanOptions
		ActorID uint `json:"actor_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	result, err := svc.ChangePlan(c.Context(), tenantID, body.ChangePlanOptions, body.ActorID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

// HandleCancelSubscription cancels a subscription, immediately or at the end
// of the current period.
func HandleCancelSubscription(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		Immediate bool   `json:"immediate"`
		Reason    string `json:"reason"`
		ActorID   uint   `json:"actor_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	if err := svc.CancelSubscription(c.Context(), tenantID, body.Immediate, body.Reason, body.ActorID); err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "canceled", "immediate": body.Immediate})
}

// HandleReactivateSubscription restores a canceled subscription.
func HandleReactivateSubscription(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		ActorID uint `json:"actor_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	if err := svc.ReactivateSubscription(c.Context(), tenantID, body.ActorID); err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "active"})
}

// HandleRenewSubscription renews a subscription at full price.
func HandleRenewSubscription(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		ActorID uint `json:"actor_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	invoice, err := svc.RenewSubscription(c.Context(), tenantID, body.ActorID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"invoice": invoice})
}

// HandleValidatePlanLimits audits a tenant's usage against its plan limits.
func HandleValidatePlanLimits(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	check, err := svc.ValidatePlanLimits(c.Context(), tenantID)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(check)
}

// HandleGetSubscriptionHistory returns the tenant's lifecycle audit trail.
func HandleGetSubscriptionHistory(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	rows, err := svc.GetHistory(c.Context(), tenantID, c.QueryInt("limit", 50))
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"history": rows})
}
