package weeklytarget

import (
	"time"

	"github.com/shopspring/decimal"
)

// RemittanceInput is a driver's cash hand-in to be recorded and posted
// against the week's target.
type RemittanceInput struct {
	TenantID   uint            `json:"tenant_id"`
	DriverID   uint            `json:"driver_id"`
	VehicleID  uint            `json:"vehicle_id"`
	Amount     decimal.Decimal `json:"amount"`
	RemittedAt time.Time       `json:"remitted_at"`
	Notes      string          `json:"notes"`
}

// WeekSummary is the display read-model for one driver's week.
type WeekSummary struct {
	DriverID          uint            `json:"driver_id"`
	DriverName        string          `json:"driver_name,omitempty"`
	VehicleID         uint            `json:"vehicle_id"`
	WeekStart         time.Time       `json:"week_start"`
	WeekEnd           time.Time       `json:"week_end"`
	BaseTarget        decimal.Decimal `json:"base_target"`
	CarriedDebt       decimal.Decimal `json:"carried_debt"`
	TotalTarget       decimal.Decimal `json:"total_target"`
	TotalRemitted     decimal.Decimal `json:"total_remitted"`
	Shortfall         decimal.Decimal `json:"shortfall"`
	CompletionPercent int             `json:"completion_percent"`
	Status            string          `json:"status"`
}
