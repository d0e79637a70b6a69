package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	ChangeTypeTrialStart   = "trial_start"
	ChangeTypeTrialEnd     = "trial_end"
	ChangeTypeUpgrade      = "upgrade"
	ChangeTypeDowngrade    = "downgrade"
	ChangeTypeCancellation = "cancellation"
	ChangeTypeReactivation = "reactivation"
	ChangeTypeRenewal      = "renewal"
)

// SubscriptionHistory is the append-only audit trail of subscription
// lifecycle transitions. Rows are created on every transition and never
// mutated or deleted.
type SubscriptionHistory struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TenantID       uint            `gorm:"not null;index:idx_subscription_history_tenant" json:"tenant_id"`
	FromPlan       string          `gorm:"type:varchar(20);not null" json:"from_plan"`
	ToPlan         string          `gorm:"type:varchar(20);not null" json:"to_plan"`
	FromCycle      string          `gorm:"type:varchar(10);not null" json:"from_cycle"`
	ToCycle        string          `gorm:"type:varchar(10);not null" json:"to_cycle"`
	ChangeType     string          `gorm:"type:varchar(20);not null;index" json:"change_type"`
	ProratedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"prorated_amount"`
	EffectiveDate  time.Time       `gorm:"type:timestamp;not null" json:"effective_date"`
	ActorID        uint            `gorm:"index" json:"actor_id"`
	Metadata       datatypes.JSON  `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt      time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

func (SubscriptionHistory) TableName() string {
	return "subscription_history"
}
