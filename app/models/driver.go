package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	DriverStatusActive   = "active"
	DriverStatusInactive = "inactive"
)

// Driver is a fleet driver belonging to a tenant.
type Driver struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	TenantID      uint           `gorm:"not null;index" json:"tenant_id"`
	FullName      string         `gorm:"type:varchar(150);not null" json:"full_name" validate:"required,min=2,max=150"`
	Phone         string         `gorm:"type:varchar(30)" json:"phone" validate:"max=30"`
	LicenseNumber string         `gorm:"type:varchar(50);index" json:"license_number" validate:"max=50"`
	Status        string         `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	CreatedAt     time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (d *Driver) Validate() error {
	v := validator.New()

	return v.Struct(d)
}
