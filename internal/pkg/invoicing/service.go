// Package invoicing turns billing events into invoice records. Persistence
// happens inside the caller's transaction; payment collection against the
// invoices happens outside this codebase.
package invoicing

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Request describes the invoice to generate for a subscription event.
type Request struct {
	TenantID      uint
	ChangeType    string
	Plan          string
	Amount        decimal.Decimal
	Description   string
	BillingPeriod string
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// BuildInvoice validates the request and constructs a pending invoice
// without persisting it. The caller writes the invoice inside the same
// transaction as the rest of the billing event, so a failed event leaves
// no orphaned invoice behind.
func (s *Service) BuildInvoice(req Request) (*models.Invoice, error) {
	if req.TenantID == 0 {
		return nil, apperr.Validation("tenant_id is required for invoice generation")
	}

	return &models.Invoice{
		Number:        fmt.Sprintf("INV-%s", uuid.New().String()),
		TenantID:      req.TenantID,
		ChangeType:    req.ChangeType,
		Plan:          req.Plan,
		Amount:        req.Amount.Round(2),
		Description:   req.Description,
		BillingPeriod: req.BillingPeriod,
		Status:        models.InvoiceStatusPending,
		IssuedAt:      time.Now(),
	}, nil
}

// ListByTenant returns a tenant's invoices, newest first.
func (s *Service) ListByTenant(ctx context.Context, tenantID uint, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 50
	}
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("issued_at DESC").
		Limit(limit).
		Find(&invoices).Error
	if err != nil {
		log.Errorw("invoice listing failed", "tenant_id", tenantID, "error", err)
		return nil, apperr.Internal(err, "listing invoices for tenant %d", tenantID)
	}
	return invoices, nil
}
