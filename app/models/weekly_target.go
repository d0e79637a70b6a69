package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	WeeklyTargetStatusActive = "active"
	WeeklyTargetStatusClosed = "closed"
)

// WeeklyTarget tracks a driver's remittance obligation for one Sunday-to-
// Saturday week. At most one row exists per (driver, week start). The carried
// debt references the previous week's closing shortfall by the
// (driver_id, week_start - 7d) addressing scheme, not by foreign key.
type WeeklyTarget struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	DriverID      uint            `gorm:"not null;index:ux_weekly_targets_driver_week,unique,priority:1" json:"driver_id"`
	VehicleID     uint            `gorm:"not null;index" json:"vehicle_id"`
	WeekStart     time.Time       `gorm:"type:timestamp;not null;index:ux_weekly_targets_driver_week,unique,priority:2;index" json:"week_start"`
	WeekEnd       time.Time       `gorm:"type:timestamp;not null" json:"week_end"`
	BaseTarget    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"base_target"`
	CarriedDebt   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"carried_debt"`
	TotalTarget   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_target"`
	TotalRemitted decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total_remitted"`
	Shortfall     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shortfall"`
	Status        string          `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	ClosedAt      *time.Time      `gorm:"type:timestamp;default:null" json:"closed_at,omitempty"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	Driver  *Driver  `gorm:"foreignKey:DriverID" json:"driver,omitempty"`
	Vehicle *Vehicle `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`
}

// IsMet reports whether the week's total target has been fully remitted.
func (w *WeeklyTarget) IsMet() bool {
	return w.Shortfall.IsZero()
}

// CompletionPercent returns remitted/total as a whole percentage, rounded.
// A zero total target counts as fully met.
func (w *WeeklyTarget) CompletionPercent() int {
	if w.TotalTarget.IsZero() {
		return 100
	}
	pct := w.TotalRemitted.Div(w.TotalTarget).Mul(decimal.NewFromInt(100)).Round(0)
	return int(pct.IntPart())
}
