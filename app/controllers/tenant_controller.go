package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/app/repository"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"github.com/manyinyire/fleetbackend/internal/pkg/database"
	"github.com/manyinyire/fleetbackend/internal/pkg/subscription"
	"gorm.io/gorm"
)

const defaultTrialDays = 14

// HandleCreateTenant onboards a tenant and starts its trial period.
func HandleCreateTenant(c *fiber.Ctx) error {
	var body struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contact_email"`
		Plan         string `json:"plan"`
		TrialDays    int    `json:"trial_days"`
		ActorID      uint   `json:"actor_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	tenant := &models.Tenant{
		Name:               body.Name,
		ContactEmail:       body.ContactEmail,
		Status:             models.SubscriptionStatusActive,
		Plan:               models.PlanFree,
		BillingCycle:       models.BillingCycleMonthly,
		SubscriptionStatus: models.SubscriptionStatusActive,
	}
	if err := tenant.Validate(); err != nil {
		return renderError(c, apperr.Validation("invalid tenant: %v", err))
	}

	repo := repository.GetGlobalRepositories().Tenant
	if err := repo.Create(tenant); err != nil {
		return renderError(c, apperr.Internal(err, "creating tenant"))
	}

	trialDays := body.TrialDays
	if trialDays <= 0 {
		trialDays = defaultTrialDays
	}
	plan := body.Plan
	if plan == "" {
		plan = models.PlanBasic
	}

	svc := subscription.NewServiceFromDB(database.GetDB())
	if err := svc.StartTrial(c.Context(), tenant.ID, plan, trialDays, body.ActorID); err != nil {
		return renderError(c, err)
	}

	created, err := repo.GetByID(tenant.ID)
	if err != nil {
		return renderError(c, apperr.Internal(err, "loading tenant %d", tenant.ID))
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleGetTenant returns a tenant by ID.
func HandleGetTenant(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	tenant, err := repository.GetGlobalRepositories().Tenant.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("tenant %d not found", id))
		}
		return renderError(c, apperr.Internal(err, "loading tenant %d", id))
	}

	return c.Status(fiber.StatusOK).JSON(tenant)
}

// HandleListTenants lists tenants with pagination. A non-empty q filters
// by name or contact email instead of paging the full set.
func HandleListTenants(c *fiber.Ctx) error {
	repo := repository.GetGlobalRepositories().Tenant

	if q := c.Query("q"); q != "" {
		tenants, err := repo.Search(q)
		if err != nil {
			return renderError(c, apperr.Internal(err, "searching tenants"))
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"tenants": tenants, "total": len(tenants)})
	}

	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 25)

	tenants, err := repo.List(offset, limit)
	if err != nil {
		return renderError(c, apperr.Internal(err, "listing tenants"))
	}
	total, err := repo.Count()
	if err != nil {
		return renderError(c, apperr.Internal(err, "counting tenants"))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"tenants": tenants, "total": total})
}

// HandleUpdateTenant updates a tenant's contact details. Plan and
// subscription fields only change through the subscription endpoints.
func HandleUpdateTenant(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		Name         string `json:"name"`
		ContactEmail string `json:"contact_email"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	repo := repository.GetGlobalRepositories().Tenant
	tenant, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("tenant %d not found", id))
		}
		return renderError(c, apperr.Internal(err, "loading tenant %d", id))
	}

	if body.Name != "" {
		tenant.Name = body.Name
	}
	if body.ContactEmail != "" {
		tenant.ContactEmail = body.ContactEmail
	}
	if err := tenant.Validate(); err != nil {
		return renderError(c, apperr.Validation("invalid tenant: %v", err))
	}
	if err := repo.Update(tenant); err != nil {
		return renderError(c, apperr.Internal(err, "updating tenant %d", id))
	}

	return c.Status(fiber.StatusOK).JSON(tenant)
}
