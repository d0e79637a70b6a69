package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	PlanFree    = "free"
	PlanBasic   = "basic"
	PlanPremium = "premium"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// Trial is not a status of its own: a trialing tenant is active with
// IsInTrial set.
const (
	SubscriptionStatusActive    = "active"
	SubscriptionStatusSuspended = "suspended"
	SubscriptionStatusCanceled  = "canceled"
)

// Tenant is a fleet operator account. The subscription state lives directly
// on the tenant row: exactly one plan/cycle pair is active at a time and the
// row is never hard-deleted, only transitioned.
type Tenant struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Name         string `gorm:"type:varchar(150);not null" json:"name" validate:"required,min=2,max=150"`
	ContactEmail string `gorm:"type:varchar(200);index" json:"contact_email" validate:"omitempty,email,max=200"`
	Status       string `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`

	Plan                    string          `gorm:"type:varchar(20);not null;default:'free';index" json:"plan"`
	BillingCycle            string          `gorm:"type:varchar(10);not null;default:'monthly'" json:"billing_cycle"`
	SubscriptionStatus      string          `gorm:"type:varchar(20);not null;default:'active';index" json:"subscription_status"`
	SubscriptionStartDate   *time.Time      `gorm:"type:timestamp;default:null" json:"subscription_start_date,omitempty"`
	SubscriptionEndDate     *time.Time      `gorm:"type:timestamp;default:null" json:"subscription_end_date,omitempty"`
	IsInTrial               bool            `gorm:"default:false" json:"is_in_trial"`
	TrialEndsAt             *time.Time      `gorm:"type:timestamp;default:null" json:"trial_ends_at,omitempty"`
	AutoRenew               bool            `gorm:"default:true" json:"auto_renew"`
	MonthlyRevenue          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"monthly_revenue"`
	CancellationRequestedAt *time.Time      `gorm:"type:timestamp;default:null" json:"cancellation_requested_at,omitempty"`
	CancellationReason      string          `gorm:"type:varchar(500)" json:"cancellation_reason,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *Tenant) Validate() error {
	v := validator.New()

	return v.Struct(t)
}

// IsCanceled reports whether the subscription has been canceled.
func (t *Tenant) IsCanceled() bool {
	return t.SubscriptionStatus == SubscriptionStatusCanceled
}

// HasActiveSubscription reports whether the tenant is entitled to its plan.
// The trial phase counts as active (IsInTrial layers on top of the status).
func (t *Tenant) HasActiveSubscription() bool {
	return t.SubscriptionStatus == SubscriptionStatusActive
}
