package subscription

import (
	"strings"

	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

func normalizePlan(plan string) string {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case models.PlanBasic:
		return models.PlanBasic
	case models.PlanPremium:
		return models.PlanPremium
	default:
		return models.PlanFree
	}
}

// planRank orders the tiers for upgrade/downgrade decisions.
func planRank(plan string) int {
	switch normalizePlan(plan) {
	case models.PlanPremium:
		return 2
	case models.PlanBasic:
		return 1
	default:
		return 0
	}
}

func isValidPlan(plan string) bool {
	switch strings.ToLower(strings.TrimSpace(plan)) {
	case models.PlanFree, models.PlanBasic, models.PlanPremium:
		return true
	default:
		return false
	}
}

func normalizeCycle(cycle string) string {
	if strings.ToLower(strings.TrimSpace(cycle)) == models.BillingCycleYearly {
		return models.BillingCycleYearly
	}
	return models.BillingCycleMonthly
}

func isValidCycle(cycle string) bool {
	switch strings.ToLower(strings.TrimSpace(cycle)) {
	case models.BillingCycleMonthly, models.BillingCycleYearly:
		return true
	default:
		return false
	}
}

// Hardcoded plan defaults. A persisted PlanConfig row for the same plan takes
// precedence; these apply when no override exists or the lookup fails.
var defaultPlanConfigs = map[string]models.PlanConfig{
	models.PlanFree: {
		Plan:         models.PlanFree,
		DisplayName:  "Free",
		MonthlyPrice: decimal.Zero,
		YearlyPrice:  decimal.Zero,
		Features:     datatypes.JSON([]byte(`["Basic fleet dashboard","Weekly remittance targets"]`)),
		MaxVehicles:  2,
		MaxUsers:     3,
		MaxDrivers:   2,
		IsActive:     true,
	},
	models.PlanBasic: {
		Plan:         models.PlanBasic,
		DisplayName:  "Basic",
		MonthlyPrice: decimal.RequireFromString("29.99"),
		YearlyPrice:  decimal.RequireFromString("299.99"),
		Features:     datatypes.JSON([]byte(`["Fleet dashboard","Weekly remittance targets","Financial reports","Email support"]`)),
		MaxVehicles:  10,
		MaxUsers:     10,
		MaxDrivers:   15,
		IsActive:     true,
	},
	models.PlanPremium: {
		Plan:         models.PlanPremium,
		DisplayName:  "Premium",
		MonthlyPrice: decimal.RequireFromString("99.99"),
		YearlyPrice:  decimal.RequireFromString("999.99"),
		Features:     datatypes.JSON([]byte(`["Everything in Basic","Unlimited fleet size","Priority support","Custom reports"]`)),
		MaxVehicles:  models.UnlimitedLimit,
		MaxUsers:     models.UnlimitedLimit,
		MaxDrivers:   models.UnlimitedLimit,
		IsActive:     true,
	},
}

// DefaultPlanConfig returns a copy of the built-in configuration for a plan.
// Unknown plans fall back to the free tier.
func DefaultPlanConfig(plan string) models.PlanConfig {
	cfg := defaultPlanConfigs[normalizePlan(plan)]
	return cfg
}

// priceForCycle picks the full price the tenant pays per billing period.
func priceForCycle(cfg models.PlanConfig, cycle string) decimal.Decimal {
	if normalizeCycle(cycle) == models.BillingCycleYearly {
		return cfg.YearlyPrice
	}
	return cfg.MonthlyPrice
}
