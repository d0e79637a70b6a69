package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// UnlimitedLimit marks a numeric plan limit as unchecked.
const UnlimitedLimit = -1

// PlanConfig is the persisted override for a plan tier. When no row exists
// for a plan the hardcoded defaults in the subscription package apply.
type PlanConfig struct {
	ID           uint            `gorm:"primaryKey" json:"id"`
	Plan         string          `gorm:"type:varchar(20);not null;uniqueIndex" json:"plan"`
	DisplayName  string          `gorm:"type:varchar(100);not null" json:"display_name"`
	MonthlyPrice decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"monthly_price"`
	YearlyPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"yearly_price"`
	Features     datatypes.JSON  `gorm:"type:json" json:"features"`
	MaxVehicles  int             `gorm:"not null;default:-1" json:"max_vehicles"`
	MaxUsers     int             `gorm:"not null;default:-1" json:"max_users"`
	MaxDrivers   int             `gorm:"not null;default:-1" json:"max_drivers"`
	IsActive     bool            `gorm:"default:true;index" json:"is_active"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsUnlimited reports whether a configured limit value means "no cap".
func IsUnlimited(limit int) bool {
	return limit == UnlimitedLimit
}
