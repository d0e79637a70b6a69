package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/manyinyire/fleetbackend/app/controllers"
	"github.com/manyinyire/fleetbackend/internal/pkg/constants"
	"github.com/manyinyire/fleetbackend/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group(constants.APIRoute, limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group(constants.APIV1Route)

	// Plans
	v1.Get("/plans", controllers.HandleListPlans)
	v1.Get("/plans/:plan", controllers.HandleGetPlan)
	v1.Post("/plans/seed", middleware.AdminAPIKeyMiddleware(), controllers.HandleSeedPlans)

	// Dashboard
	v1.Get("/statistics", controllers.HandleGetStatistics)

	// Tenants & subscriptions
	v1.Post("/tenants", controllers.HandleCreateTenant)
	v1.Get("/tenants", controllers.HandleListTenants)
	v1.Get("/tenants/:id", controllers.HandleGetTenant)
	v1.Put("/tenants/:id", controllers.HandleUpdateTenant)
	v1.Get("/tenants/:id/drivers", controllers.HandleListTenantDrivers)
	v1.Get("/tenants/:id/vehicles", controllers.HandleListTenantVehicles)
	v1.Get("/tenants/:id/users", controllers.HandleListTenantUsers)
	v1.Get("/tenants/:id/invoices", controllers.HandleListTenantInvoices)
	v1.Get("/tenants/:id/subscription", controllers.HandleGetSubscription)
	v1.Post("/tenants/:id/subscription/change-plan", controllers.HandleChangePlan)
	v1.Post("/tenants/:id/subscription/cancel", controllers.HandleCancelSubscription)
	v1.Post("/tenants/:id/subscription/reactivate", controllers.HandleReactivateSubscription)
	v1.Post("/tenants/:id/subscription/renew", controllers.HandleRenewSubscription)
	v1.Get("/tenants/:id/subscription/limits", controllers.HandleValidatePlanLimits)
	v1.Get("/tenants/:id/subscription/history", controllers.HandleGetSubscriptionHistory)

	// Users
	v1.Post("/users", controllers.HandleCreateUser)
	v1.Post("/users/login", controllers.HandleAuthenticateUser)
	v1.Get("/users/:id", controllers.HandleGetUser)

	// Fleet
	v1.Post("/drivers", controllers.HandleCreateDriver)
	v1.Get("/drivers/:id", controllers.HandleGetDriver)
	v1.Put("/drivers/:id", controllers.HandleUpdateDriver)
	v1.Post("/vehicles", controllers.HandleCreateVehicle)
	v1.Put("/vehicles/:id", controllers.HandleUpdateVehicle)
	v1.Post("/vehicles/:id/assign-driver", controllers.HandleAssignVehicleDriver)

	// Weekly remittance targets
	v1.Post("/drivers/:id/weekly-target", controllers.HandleGetOrCreateWeeklyTarget)
	v1.Post("/drivers/:id/remittances", controllers.HandleRecordRemittance)
	v1.Get("/drivers/:id/week-summary", controllers.HandleGetDriverWeekSummary)
	v1.Get("/drivers/:id/target-history", controllers.HandleGetDriverTargetHistory)
	v1.Get("/weekly-targets/summary", controllers.HandleGetAllDriversWeekSummary)
	v1.Post("/weekly-targets/close", middleware.AdminAPIKeyMiddleware(), controllers.HandleCloseLastWeek)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
