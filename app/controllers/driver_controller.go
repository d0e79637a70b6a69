package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/app/repository"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"gorm.io/gorm"
)

// HandleCreateDriver registers a driver for a tenant.
func HandleCreateDriver(c *fiber.Ctx) error {
	var driver models.Driver
	if err := c.BodyParser(&driver); err != nil {
		return badRequest(c, "invalid request body")
	}
	if driver.TenantID == 0 {
		return renderError(c, apperr.Validation("tenant_id is required"))
	}
	if driver.Status == "" {
		driver.Status = models.DriverStatusActive
	}
	if err := driver.Validate(); err != nil {
		return renderError(c, apperr.Validation("invalid driver: %v", err))
	}

	if err := repository.GetGlobalRepositories().Driver.Create(&driver); err != nil {
		return renderError(c, apperr.Internal(err, "creating driver"))
	}

	return c.Status(fiber.StatusCreated).JSON(driver)
}

// HandleGetDriver returns a driver by ID.
func HandleGetDriver(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	driver, err := repository.GetGlobalRepositories().Driver.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("driver %d not found", id))
		}
		return renderError(c, apperr.Internal(err, "loading driver %d", id))
	}

	return c.Status(fiber.StatusOK).JSON(driver)
}

// HandleUpdateDriver updates a driver's details or status.
func HandleUpdateDriver(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		FullName      string `json:"full_name"`
		Phone         string `json:"phone"`
		LicenseNumber string `json:"license_number"`
		Status        string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	repo := repository.GetGlobalRepositories().Driver
	driver, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("driver %d not found", id))
		}
		return renderError(c, apperr.Internal(err, "loading driver %d", id))
	}

	if body.FullName != "" {
		driver.FullName = body.FullName
	}
	if body.Phone != "" {
		driver.Phone = body.Phone
	}
	if body.LicenseNumber != "" {
		driver.LicenseNumber = body.LicenseNumber
	}
	if body.Status != "" {
		driver.Status = body.Status
	}
	if err := driver.Validate(); err != nil {
		return renderError(c, apperr.Validation("invalid driver: %v", err))
	}
	if err := repo.Update(driver); err != nil {
		return renderError(c, apperr.Internal(err, "updating driver %d", id))
	}

	return c.Status(fiber.StatusOK).JSON(driver)
}

// HandleListTenantDrivers lists a tenant's drivers with pagination.
func HandleListTenantDrivers(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 25)

	repo := repository.GetGlobalRepositories().Driver
	drivers, err := repo.GetByTenantID(tenantID, offset, limit)
	if err != nil {
		return renderError(c, apperr.Internal(err, "listing drivers for tenant %d", tenantID))
	}
	total, err := repo.CountByTenantID(tenantID)
	if err != nil {
		return renderError(c, apperr.Internal(err, "counting drivers for tenant %d", tenantID))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"drivers": drivers, "total": total})
}

// HandleCreateVehicle registers a vehicle for a tenant.
func HandleCreateVehicle(c *fiber.Ctx) error {
	var vehicle models.Vehicle
	if err := c.BodyParser(&vehicle); err != nil {
		return badRequest(c, "invalid request body")
	}
	if vehicle.TenantID == 0 {
		return renderError(c, apperr.Validation("tenant_id is required"))
	}
	if vehicle.Status == "" {
		vehicle.Status = models.VehicleStatusActive
	}
	if err := vehicle.Validate(); err != nil {
		return renderError(c, apperr.Validation("invalid vehicle: %v", err))
	}

	if err := repository.GetGlobalRepositories().Vehicle.Create(&vehicle); err != nil {
		return renderError(c, apperr.Internal(err, "creating vehicle"))
	}

	return c.Status(fiber.StatusCreated).JSON(vehicle)
}

// HandleAssignVehicleDriver sets or clears the driver assigned to a vehicle.
func HandleAssignVehicleDriver(c *fiber.Ctx) error {
	vehicleID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		DriverID *uint `json:"driver_id"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	if err := repository.GetGlobalRepositories().Vehicle.AssignDriver(vehicleID, body.DriverID); err != nil {
		return renderError(c, apperr.Internal(err, "assigning driver to vehicle %d", vehicleID))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "assigned"})
}

// HandleUpdateVehicle updates a vehicle's details or status.
func HandleUpdateVehicle(c *fiber.Ctx) error {
	id, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		RegistrationNumber string `json:"registration_number"`
		Make               string `json:"make"`
		Model              string `json:"model"`
		Status             string `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	repo := repository.GetGlobalRepositories().Vehicle
	vehicle, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return renderError(c, apperr.NotFound("vehicle %d not found", id))
		}
		return renderError(c, apperr.Internal(err, "loading vehicle %d", id))
	}

	if body.RegistrationNumber != "" {
		vehicle.RegistrationNumber = body.RegistrationNumber
	}
	if body.Make != "" {
		vehicle.Make = body.Make
	}
	if body.Model != "" {
		vehicle.Model = body.Model
	}
	if body.Status != "" {
		vehicle.Status = body.Status
	}
	if err := vehicle.Validate(); err != nil {
		return renderError(c, apperr.Validation("invalid vehicle: %v", err))
	}
	if err := repo.Update(vehicle); err != nil {
		return renderError(c, apperr.Internal(err, "updating vehicle %d", id))
	}

	return c.Status(fiber.StatusOK).JSON(vehicle)
}

// HandleListTenantVehicles lists a tenant's vehicles with pagination.
func HandleListTenantVehicles(c *fiber.Ctx) error {
	tenantID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 25)

	repo := repository.GetGlobalRepositories().Vehicle
	vehicles, err := repo.GetByTenantID(tenantID, offset, limit)
	if err != nil {
		return renderError(c, apperr.Internal(err, "listing vehicles for tenant %d", tenantID))
	}
	total, err := repo.CountByTenantID(tenantID)
	if err != nil {
		return renderError(c, apperr.Internal(err, "counting vehicles for tenant %d", tenantID))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"vehicles": vehicles, "total": total})
}
