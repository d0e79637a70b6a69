package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RemittanceStatusPending  = "pending"
	RemittanceStatusApproved = "approved"
	RemittanceStatusRejected = "rejected"
)

// Remittance is a single cash hand-in by a driver. Approved remittances feed
// into the driver's weekly target.
type Remittance struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	TenantID   uint            `gorm:"not null;index" json:"tenant_id"`
	DriverID   uint            `gorm:"not null;index" json:"driver_id"`
	VehicleID  uint            `gorm:"not null;index" json:"vehicle_id"`
	Amount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	RemittedAt time.Time       `gorm:"type:timestamp;not null;index" json:"remitted_at"`
	Status     string          `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`
	Notes      string          `gorm:"type:varchar(255)" json:"notes,omitempty"`
	CreatedAt  time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
