package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/manyinyire/fleetbackend/internal/pkg/database"
	"github.com/manyinyire/fleetbackend/internal/pkg/weeklytarget"
	"github.com/shopspring/decimal"
)

// HandleGetOrCreateWeeklyTarget ensures the driver has a target for the
// current week and returns it.
func HandleGetOrCreateWeeklyTarget(c *fiber.Ctx) error {
	driverID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body struct {
		VehicleID  uint            `json:"vehicle_id"`
		BaseTarget decimal.Decimal `json:"base_target"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	svc := weeklytarget.NewServiceFromDB(database.GetDB())
	target, err := svc.GetOrCreateWeeklyTarget(c.Context(), driverID, body.VehicleID, body.BaseTarget)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(target)
}

// HandleRecordRemittance records a driver's remittance and posts it against
// the week's target.
func HandleRecordRemittance(c *fiber.Ctx) error {
	driverID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	var body weeklytarget.RemittanceInput
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	body.DriverID = driverID

	svc := weeklytarget.NewServiceFromDB(database.GetDB())
	target, err := svc.RecordRemittance(c.Context(), body)
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(target)
}

// HandleGetDriverWeekSummary returns the driver's summary for the week
// containing the optional ?date= query (default: today).
func HandleGetDriverWeekSummary(c *fiber.Ctx) error {
	driverID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	svc := weeklytarget.NewServiceFromDB(database.GetDB())
	summary, err := svc.GetDriverWeekSummary(c.Context(), driverID, queryDate(c))
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(summary)
}

// HandleGetAllDriversWeekSummary returns summaries for every driver's target
// in the requested week.
func HandleGetAllDriversWeekSummary(c *fiber.Ctx) error {
	svc := weeklytarget.NewServiceFromDB(database.GetDB())
	summaries, err := svc.GetAllDriversWeekSummary(c.Context(), queryDate(c))
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"summaries": summaries})
}

// HandleGetDriverTargetHistory returns the driver's recent weekly targets.
func HandleGetDriverTargetHistory(c *fiber.Ctx) error {
	driverID, err := paramUint(c, "id")
	if err != nil {
		return renderError(c, err)
	}

	svc := weeklytarget.NewServiceFromDB(database.GetDB())
	targets, err := svc.GetDriverHistory(c.Context(), driverID, c.QueryInt("limit", 12))
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"targets": targets})
}

// HandleCloseLastWeek closes last week's still-active targets. Exposed for
// the external cron trigger and operators; also invoked by the background
// ticker.
func HandleCloseLastWeek(c *fiber.Ctx) error {
	svc := weeklytarget.NewServiceFromDB(database.GetDB())
	closed, err := svc.CloseLastWeek(c.Context())
	if err != nil {
		return renderError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"closed": len(closed), "targets": closed})
}

func queryDate(c *fiber.Ctx) time.Time {
	if raw := c.Query("date"); raw != "" {
		if d, err := time.ParseInLocation("2006-01-02", raw, time.Local); err == nil {
			return d
		}
	}
	return time.Now()
}
