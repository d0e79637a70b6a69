package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	InvoiceStatusPending = "pending"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusVoid    = "void"
)

// Invoice is a billing document produced when a plan change or renewal is
// charged. Payment collection itself is handled outside this codebase.
type Invoice struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	Number        string          `gorm:"type:varchar(40);not null;uniqueIndex" json:"number"`
	TenantID      uint            `gorm:"not null;index" json:"tenant_id"`
	ChangeType    string          `gorm:"type:varchar(20);not null" json:"change_type"`
	Plan          string          `gorm:"type:varchar(20);not null" json:"plan"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Description   string          `gorm:"type:varchar(255)" json:"description"`
	BillingPeriod string          `gorm:"type:varchar(50)" json:"billing_period"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	IssuedAt      time.Time       `gorm:"type:timestamp;not null" json:"issued_at"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
