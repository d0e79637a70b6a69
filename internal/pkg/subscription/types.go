package subscription

import (
	"time"

	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/shopspring/decimal"
)

// ChangePlanOptions is the requested target state for a plan change.
type ChangePlanOptions struct {
	NewPlan      string `json:"new_plan"`
	BillingCycle string `json:"billing_cycle"`
	Prorate      bool   `json:"prorate"`
}

// ChangePlanResult bundles the generated invoice with the proration detail
// that produced its amount. Proration is nil when no proration applied.
type ChangePlanResult struct {
	Invoice   *models.Invoice  `json:"invoice"`
	Proration *ProrationResult `json:"proration,omitempty"`
}

// Details is the read model for a tenant's subscription state.
type Details struct {
	TenantID           uint              `json:"tenant_id"`
	Plan               string            `json:"plan"`
	BillingCycle       string            `json:"billing_cycle"`
	Status             string            `json:"status"`
	IsInTrial          bool              `json:"is_in_trial"`
	TrialEndsAt        *time.Time        `json:"trial_ends_at,omitempty"`
	AutoRenew          bool              `json:"auto_renew"`
	SubscriptionStart  *time.Time        `json:"subscription_start,omitempty"`
	SubscriptionEnd    *time.Time        `json:"subscription_end,omitempty"`
	DaysUntilRenewal   *int              `json:"days_until_renewal,omitempty"`
	CanUpgrade         bool              `json:"can_upgrade"`
	CanDowngrade       bool              `json:"can_downgrade"`
	CurrentPeriodPrice decimal.Decimal   `json:"current_period_price"`
	PlanConfig         models.PlanConfig `json:"plan_config"`
}

// LimitCheck reports plan-limit compliance. It never blocks usage; callers
// decide what to do with the violations.
type LimitCheck struct {
	WithinLimits bool     `json:"within_limits"`
	Violations   []string `json:"violations"`
}
