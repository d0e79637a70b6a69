package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWeeklyTargetIsMet(t *testing.T) {
	target := WeeklyTarget{Shortfall: decimal.RequireFromString("50")}
	assert.False(t, target.IsMet())

	target.Shortfall = decimal.Zero
	assert.True(t, target.IsMet())
}

func TestWeeklyTargetCompletionPercent(t *testing.T) {
	tests := []struct {
		name     string
		total    string
		remitted string
		want     int
	}{
		{"nothing remitted", "100", "0", 0},
		{"partially remitted", "200", "50", 25},
		{"fully remitted", "100", "100", 100},
		{"overpaid", "100", "150", 150},
		{"rounded", "300", "100", 33},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := WeeklyTarget{
				TotalTarget:   decimal.RequireFromString(tt.total),
				TotalRemitted: decimal.RequireFromString(tt.remitted),
			}
			assert.Equal(t, tt.want, target.CompletionPercent())
		})
	}
}

func TestWeeklyTargetCompletionPercentZeroTarget(t *testing.T) {
	target := WeeklyTarget{TotalTarget: decimal.Zero}
	assert.Equal(t, 100, target.CompletionPercent())
}

func TestTenantSubscriptionHelpers(t *testing.T) {
	tenant := Tenant{SubscriptionStatus: SubscriptionStatusActive}
	assert.True(t, tenant.HasActiveSubscription())
	assert.False(t, tenant.IsCanceled())

	tenant.SubscriptionStatus = SubscriptionStatusCanceled
	assert.False(t, tenant.HasActiveSubscription())
	assert.True(t, tenant.IsCanceled())
}
