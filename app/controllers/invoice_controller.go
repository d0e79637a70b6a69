package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/manyinyire/fleetbackend/internal/pkg/database"
	"github.com/manyinyire/fleetbackend/internal/pkg/invoicing"
)

// HandleListTenantInvoices returns the invoices generated for a tenant's
// billing events, newest first.
func HandleListTenantInvoices(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	svc := invoicing.NewService(database.GetDB())
	invoices, err := svc.ListByTenant(c.Context(), tenantID, c.QueryInt("limit", 50))
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"invoices": invoices})
}
