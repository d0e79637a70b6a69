package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/app/repository"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// HandleCreateUser creates a portal account. Super admins carry no tenant;
// every other role must belong to one.
func HandleCreateUser(c *fiber.Ctx) error {
	var body struct {
		TenantID *uint  `json:"tenant_id"`
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	role := body.Role
	if role == "" {
		role = models.RoleStaff
	}
	if role != models.RoleSuperAdmin && body.TenantID == nil {
		return renderError(c, apperr.Validation("tenant_id is required for role %s", role))
	}

	repo := repository.GetGlobalRepositories().User
	if _, err := repo.GetByEmail(body.Email); err == nil {
		return renderError(c, apperr.Validation("email %s is already registered", body.Email))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return renderError(c, apperr.Internal(err, "checking email %s", body.Email))
	}

	user, err := models.CreateUser(body.TenantID, body.Name, body.Email, body.Password, role)
	if err != nil {
		return renderError(c, apperr.Validation("invalid user: %v", err))
	}
	if err := repo.Create(user); err != nil {
		return renderError(c, apperr.Internal(err, "creating user"))
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

// HandleGetUser returns a user by ID.
func HandleGetUser(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	user, err := repository.GetGlobalRepositories().User.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("user %d not found", id))
		}
		return renderError(c, apperr.Internal(err, "loading user %d", id))
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// HandleAuthenticateUser checks a user's credentials. Wrong email, wrong
// password and non-active accounts all answer the same 401 so the endpoint
// does not leak which part failed.
func HandleAuthenticateUser(c *fiber.Ctx) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	user, err := repository.GetGlobalRepositories().User.GetByEmail(body.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
		}
		return renderError(c, apperr.Internal(err, "loading user by email"))
	}
	if !user.CheckPassword(body.Password) || !user.IsActive() {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	return c.Status(fiber.StatusOK).JSON(user)
}

// HandleListTenantUsers lists a tenant's users with pagination.
func HandleListTenantUsers(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 25)

	repo := repository.GetGlobalRepositories().User
	users, err := repo.GetByTenantID(tenantID, offset, limit)
	if err != nil {
		return renderError(c, apperr.Internal(err, "listing users for tenant %d", tenantID))
	}
	total, err := repo.CountByTenantID(tenantID)
	if err != nil {
		return renderError(c, apperr.Internal(err, "counting users for tenant %d", tenantID))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"users": users, "total": total})
}
