package subscription

import (
	"testing"

	"github.com/manyinyire/fleetbackend/app/models"
)

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "free", want: "free"},
		{in: "basic", want: "basic"},
		{in: "premium", want: "premium"},
		{in: "PREMIUM", want: "premium"},
		{in: " basic ", want: "basic"},
		{in: "invalid", want: "free"},
		{in: "", want: "free"},
	}

	for _, tt := range tests {
		if got := normalizePlan(tt.in); got != tt.want {
			t.Fatalf("normalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlanRank(t *testing.T) {
	if planRank("free") >= planRank("basic") {
		t.Fatalf("expected basic to outrank free")
	}
	if planRank("basic") >= planRank("premium") {
		t.Fatalf("expected premium to outrank basic")
	}
}

func TestIsValidPlan(t *testing.T) {
	for _, plan := range []string{"free", "basic", "premium", "Basic"} {
		if !isValidPlan(plan) {
			t.Fatalf("expected plan %q to be valid", plan)
		}
	}
	for _, plan := range []string{"", "gold", "enterprise"} {
		if isValidPlan(plan) {
			t.Fatalf("expected plan %q to be invalid", plan)
		}
	}
}

func TestNormalizeCycle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "monthly", want: models.BillingCycleMonthly},
		{in: "yearly", want: models.BillingCycleYearly},
		{in: "YEARLY", want: models.BillingCycleYearly},
		{in: "weekly", want: models.BillingCycleMonthly},
		{in: "", want: models.BillingCycleMonthly},
	}

	for _, tt := range tests {
		if got := normalizeCycle(tt.in); got != tt.want {
			t.Fatalf("normalizeCycle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultPlanConfig(t *testing.T) {
	free := DefaultPlanConfig(models.PlanFree)
	if !free.MonthlyPrice.IsZero() || !free.YearlyPrice.IsZero() {
		t.Fatalf("expected free plan to cost nothing, got %s/%s", free.MonthlyPrice, free.YearlyPrice)
	}
	if free.MaxVehicles != 2 || free.MaxUsers != 3 || free.MaxDrivers != 2 {
		t.Fatalf("unexpected free plan limits: %d/%d/%d", free.MaxVehicles, free.MaxUsers, free.MaxDrivers)
	}

	basic := DefaultPlanConfig(models.PlanBasic)
	if basic.MonthlyPrice.String() != "29.99" || basic.YearlyPrice.String() != "299.99" {
		t.Fatalf("unexpected basic plan prices: %s/%s", basic.MonthlyPrice, basic.YearlyPrice)
	}
	if basic.MaxVehicles != 10 || basic.MaxUsers != 10 || basic.MaxDrivers != 15 {
		t.Fatalf("unexpected basic plan limits: %d/%d/%d", basic.MaxVehicles, basic.MaxUsers, basic.MaxDrivers)
	}

	premium := DefaultPlanConfig(models.PlanPremium)
	if premium.MonthlyPrice.String() != "99.99" || premium.YearlyPrice.String() != "999.99" {
		t.Fatalf("unexpected premium plan prices: %s/%s", premium.MonthlyPrice, premium.YearlyPrice)
	}
	for _, limit := range []int{premium.MaxVehicles, premium.MaxUsers, premium.MaxDrivers} {
		if !models.IsUnlimited(limit) {
			t.Fatalf("expected premium limits to be unlimited, got %d", limit)
		}
	}

	// Unknown plans fall back to free.
	unknown := DefaultPlanConfig("enterprise")
	if unknown.Plan != models.PlanFree {
		t.Fatalf("expected fallback to free, got %q", unknown.Plan)
	}
}

func TestPriceForCycle(t *testing.T) {
	cfg := DefaultPlanConfig(models.PlanBasic)
	if got := priceForCycle(cfg, models.BillingCycleMonthly); got.String() != "29.99" {
		t.Fatalf("monthly price = %s, want 29.99", got)
	}
	if got := priceForCycle(cfg, models.BillingCycleYearly); got.String() != "299.99" {
		t.Fatalf("yearly price = %s, want 299.99", got)
	}
}
