package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	VehicleStatusActive      = "active"
	VehicleStatusMaintenance = "maintenance"
	VehicleStatusRetired     = "retired"
)

// Vehicle is a fleet vehicle belonging to a tenant, optionally assigned to a
// driver.
type Vehicle struct {
	ID                 uint           `gorm:"primaryKey" json:"id"`
	TenantID           uint           `gorm:"not null;index" json:"tenant_id"`
	RegistrationNumber string         `gorm:"type:varchar(20);not null;uniqueIndex" json:"registration_number" validate:"required,max=20"`
	Make               string         `gorm:"type:varchar(50)" json:"make" validate:"max=50"`
	Model              string         `gorm:"type:varchar(50)" json:"model" validate:"max=50"`
	AssignedDriverID   *uint          `gorm:"index" json:"assigned_driver_id,omitempty"`
	Status             string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt          time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`
}

func (v *Vehicle) Validate() error {
	return validator.New().Struct(v)
}
