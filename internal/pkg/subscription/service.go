// Package subscription manages tenant plan configuration, prorated plan
// changes, and the subscription lifecycle (trial, cancellation, reactivation,
// renewal) with an append-only history trail.
package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"github.com/manyinyire/fleetbackend/internal/pkg/cache"
	"github.com/manyinyire/fleetbackend/internal/pkg/invoicing"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const planConfigCacheTTL = 10 * time.Minute

// InvoiceBuilder constructs invoices for billing events. Persisting the
// built invoice is the service's job, inside the event's transaction.
type InvoiceBuilder interface {
	BuildInvoice(req invoicing.Request) (*models.Invoice, error)
}

// Service implements the subscription business rules over an injected
// repository and invoice collaborator.
type Service struct {
	repo       Repository
	invoices   InvoiceBuilder
	cacheReads bool
	now        func() time.Time
}

// NewService creates a subscription service from injected collaborators.
func NewService(repo Repository, invoices InvoiceBuilder) *Service {
	return &Service{repo: repo, invoices: invoices, now: time.Now}
}

// NewServiceFromDB creates a subscription service from a GORM DB handle with
// plan-config caching enabled.
func NewServiceFromDB(db *gorm.DB) *Service {
	s := NewService(NewRepository(db), invoicing.NewService(db))
	s.cacheReads = true
	return s
}

// GetPlanConfig returns the persisted configuration for a plan, falling back
// to the built-in defaults when no override exists. A lookup failure is
// logged and treated as "use default"; this method has no error path.
func (s *Service) GetPlanConfig(ctx context.Context, plan string) models.PlanConfig {
	p := normalizePlan(plan)

	cacheKey := "planconfig:" + p
	if s.cacheReads {
		var cached models.PlanConfig
		if err := cache.GetJSON(cacheKey, &cached); err == nil {
			return cached
		}
	}

	cfg, err := s.repo.GetPlanConfig(p)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warnw("plan config lookup failed, using defaults", "plan", p, "error", err)
		}
		return DefaultPlanConfig(p)
	}

	if s.cacheReads {
		if err := cache.SetJSON(cacheKey, cfg, planConfigCacheTTL); err != nil {
			log.Warnw("plan config cache write failed", "plan", p, "error", err)
		}
	}
	return *cfg
}

// ListPlans returns the effective configuration of every plan tier: the
// built-in defaults overlaid with any persisted overrides.
func (s *Service) ListPlans(ctx context.Context) []models.PlanConfig {
	plans := []string{models.PlanFree, models.PlanBasic, models.PlanPremium}
	out := make([]models.PlanConfig, 0, len(plans))
	for _, p := range plans {
		out = append(out, s.GetPlanConfig(ctx, p))
	}
	return out
}

// SeedPlanConfigs upserts the built-in defaults into persistence so that
// admins can edit them as overrides.
func (s *Service) SeedPlanConfigs(ctx context.Context) error {
	for _, plan := range []string{models.PlanFree, models.PlanBasic, models.PlanPremium} {
		cfg := DefaultPlanConfig(plan)
		if err := s.repo.UpsertPlanConfig(&cfg); err != nil {
			log.Errorw("seeding plan config failed", "plan", plan, "error", err)
			return apperr.Internal(err, "seeding plan config %s", plan)
		}
		if s.cacheReads {
			_ = cache.Delete("planconfig:" + plan)
		}
	}
	return nil
}

// GetSubscriptionDetails reads the tenant's subscription state and derives
// renewal countdown and upgrade/downgrade capability.
func (s *Service) GetSubscriptionDetails(ctx context.Context, tenantID uint) (*Details, error) {
	tenant, err := s.getTenant(tenantID, "get subscription details")
	if err != nil {
		return nil, err
	}

	cfg := s.GetPlanConfig(ctx, tenant.Plan)

	var daysUntilRenewal *int
	if tenant.SubscriptionEndDate != nil {
		d := ceilDays(s.now(), *tenant.SubscriptionEndDate)
		daysUntilRenewal = &d
	}

	rank := planRank(tenant.Plan)
	return &Details{
		TenantID:           tenant.ID,
		Plan:               tenant.Plan,
		BillingCycle:       tenant.BillingCycle,
		Status:             tenant.SubscriptionStatus,
		IsInTrial:          tenant.IsInTrial,
		TrialEndsAt:        tenant.TrialEndsAt,
		AutoRenew:          tenant.AutoRenew,
		SubscriptionStart:  tenant.SubscriptionStartDate,
		SubscriptionEnd:    tenant.SubscriptionEndDate,
		DaysUntilRenewal:   daysUntilRenewal,
		CanUpgrade:         rank < planRank(models.PlanPremium),
		CanDowngrade:       rank > planRank(models.PlanFree),
		CurrentPeriodPrice: priceForCycle(cfg, tenant.BillingCycle),
		PlanConfig:         cfg,
	}, nil
}

// ChangePlan moves a tenant to a new plan and/or billing cycle. The billing
// cycle is persisted immediately; the plan itself is only persisted once the
// external payment collaborator confirms payment of the generated invoice.
func (s *Service) ChangePlan(ctx context.Context, tenantID uint, opts ChangePlanOptions, actorID uint) (*ChangePlanResult, error) {
	if !isValidPlan(opts.NewPlan) {
		return nil, apperr.Validation("unknown plan %q", opts.NewPlan)
	}
	if opts.BillingCycle != "" && !isValidCycle(opts.BillingCycle) {
		return nil, apperr.Validation("unknown billing cycle %q", opts.BillingCycle)
	}

	tenant, err := s.getTenant(tenantID, "change plan")
	if err != nil {
		return nil, err
	}

	newPlan := normalizePlan(opts.NewPlan)
	newCycle := tenant.BillingCycle
	if opts.BillingCycle != "" {
		newCycle = normalizeCycle(opts.BillingCycle)
	}

	if tenant.Plan == newPlan && tenant.BillingCycle == newCycle {
		return nil, apperr.Validation("tenant %d is already on plan %s (%s)", tenantID, newPlan, newCycle)
	}

	changeType := models.ChangeTypeDowngrade
	if planRank(newPlan) > planRank(tenant.Plan) {
		changeType = models.ChangeTypeUpgrade
	}

	currentCfg := s.GetPlanConfig(ctx, tenant.Plan)
	newCfg := s.GetPlanConfig(ctx, newPlan)

	var proration *ProrationResult
	if opts.Prorate && tenant.SubscriptionStartDate != nil && tenant.SubscriptionEndDate != nil {
		proration, err = CalculateProration(ProrationParams{
			CurrentMonthlyPrice: currentCfg.MonthlyPrice,
			CurrentYearlyPrice:  currentCfg.YearlyPrice,
			NewMonthlyPrice:     newCfg.MonthlyPrice,
			NewYearlyPrice:      newCfg.YearlyPrice,
			BillingCycle:        newCycle,
			SubscriptionStart:   *tenant.SubscriptionStartDate,
			SubscriptionEnd:     *tenant.SubscriptionEndDate,
			Now:                 s.now(),
		})
		if err != nil {
			return nil, err
		}
	}

	amount := priceForCycle(newCfg, newCycle)
	if proration != nil {
		amount = amount.Sub(proration.CreditAmount)
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	invoice, err := s.invoices.BuildInvoice(invoicing.Request{
		TenantID:      tenantID,
		ChangeType:    changeType,
		Plan:          newPlan,
		Amount:        amount.Round(2),
		Description:   fmt.Sprintf("Plan change %s -> %s", tenant.Plan, newPlan),
		BillingPeriod: billingPeriodLabel(newCycle, s.now()),
	})
	if err != nil {
		return nil, err
	}

	fromPlan, fromCycle := tenant.Plan, tenant.BillingCycle
	err = s.repo.Transaction(func(tx Repository) error {
		if ierr := tx.CreateInvoice(invoice); ierr != nil {
			return ierr
		}
		if herr := tx.AppendHistory(&models.SubscriptionHistory{
			TenantID:       tenantID,
			FromPlan:       fromPlan,
			ToPlan:         newPlan,
			FromCycle:      fromCycle,
			ToCycle:        newCycle,
			ChangeType:     changeType,
			ProratedAmount: amount.Round(2),
			EffectiveDate:  s.now(),
			ActorID:        actorID,
			Metadata:       jsonMetadata(map[string]interface{}{"prorate": opts.Prorate, "invoice_number": invoice.Number}),
		}); herr != nil {
			return herr
		}

		// Only the billing cycle switches now. The plan flips when the
		// payment collaborator confirms the invoice.
		tenant.BillingCycle = newCycle
		return tx.UpdateTenant(tenant)
	})
	if err != nil {
		log.Errorw("plan change persistence failed", "tenant_id", tenantID, "new_plan", newPlan, "error", err)
		return nil, apperr.Internal(err, "changing plan for tenant %d", tenantID)
	}

	log.Infow("plan change recorded",
		"tenant_id", tenantID, "from_plan", fromPlan, "to_plan", newPlan,
		"change_type", changeType, "amount", amount.String())

	return &ChangePlanResult{Invoice: invoice, Proration: proration}, nil
}

// CancelSubscription cancels a tenant's subscription. Immediate cancellation
// downgrades to the free plan right away; deferred cancellation only disables
// auto-renew and lets the period run out (no enforcement job exists for the
// eventual downgrade).
func (s *Service) CancelSubscription(ctx context.Context, tenantID uint, immediate bool, reason string, actorID uint) error {
	tenant, err := s.getTenant(tenantID, "cancel subscription")
	if err != nil {
		return err
	}
	if tenant.IsCanceled() {
		return apperr.Validation("subscription for tenant %d is already canceled", tenantID)
	}

	now := s.now()
	fromPlan, fromCycle := tenant.Plan, tenant.BillingCycle

	if immediate {
		tenant.SubscriptionStatus = models.SubscriptionStatusCanceled
		tenant.Plan = models.PlanFree
		tenant.SubscriptionEndDate = &now
		tenant.IsInTrial = false
	}
	tenant.AutoRenew = false
	tenant.CancellationRequestedAt = &now
	tenant.CancellationReason = reason

	toPlan := tenant.Plan
	err = s.repo.Transaction(func(tx Repository) error {
		if uerr := tx.UpdateTenant(tenant); uerr != nil {
			return uerr
		}
		return tx.AppendHistory(&models.SubscriptionHistory{
			TenantID:      tenantID,
			FromPlan:      fromPlan,
			ToPlan:        toPlan,
			FromCycle:     fromCycle,
			ToCycle:       tenant.BillingCycle,
			ChangeType:    models.ChangeTypeCancellation,
			EffectiveDate: now,
			ActorID:       actorID,
			Metadata:      jsonMetadata(map[string]interface{}{"immediate": immediate, "reason": reason}),
		})
	})
	if err != nil {
		log.Errorw("cancellation failed", "tenant_id", tenantID, "immediate", immediate, "error", err)
		return apperr.Internal(err, "canceling subscription for tenant %d", tenantID)
	}

	log.Infow("subscription canceled", "tenant_id", tenantID, "immediate", immediate, "actor_id", actorID)
	return nil
}

// ReactivateSubscription restores a canceled subscription to active with a
// fresh billing period on the tenant's current cycle.
func (s *Service) ReactivateSubscription(ctx context.Context, tenantID uint, actorID uint) error {
	tenant, err := s.getTenant(tenantID, "reactivate subscription")
	if err != nil {
		return err
	}
	if !tenant.IsCanceled() {
		return apperr.Validation("subscription for tenant %d is not canceled", tenantID)
	}

	now := s.now()
	end := periodEnd(now, tenant.BillingCycle)
	fromPlan := tenant.Plan

	tenant.SubscriptionStatus = models.SubscriptionStatusActive
	tenant.AutoRenew = true
	tenant.SubscriptionStartDate = &now
	tenant.SubscriptionEndDate = &end
	tenant.CancellationRequestedAt = nil
	tenant.CancellationReason = ""

	err = s.repo.Transaction(func(tx Repository) error {
		if uerr := tx.UpdateTenant(tenant); uerr != nil {
			return uerr
		}
		return tx.AppendHistory(&models.SubscriptionHistory{
			TenantID:      tenantID,
			FromPlan:      fromPlan,
			ToPlan:        tenant.Plan,
			FromCycle:     tenant.BillingCycle,
			ToCycle:       tenant.BillingCycle,
			ChangeType:    models.ChangeTypeReactivation,
			EffectiveDate: now,
			ActorID:       actorID,
		})
	})
	if err != nil {
		log.Errorw("reactivation failed", "tenant_id", tenantID, "error", err)
		return apperr.Internal(err, "reactivating subscription for tenant %d", tenantID)
	}

	log.Infow("subscription reactivated", "tenant_id", tenantID, "actor_id", actorID)
	return nil
}

// RenewSubscription rolls the tenant into a new billing period at the full,
// non-prorated plan price and generates the matching invoice.
func (s *Service) RenewSubscription(ctx context.Context, tenantID uint, actorID uint) (*models.Invoice, error) {
	tenant, err := s.getTenant(tenantID, "renew subscription")
	if err != nil {
		return nil, err
	}
	if !tenant.AutoRenew {
		return nil, apperr.Validation("auto-renew is disabled for tenant %d", tenantID)
	}

	now := s.now()
	cfg := s.GetPlanConfig(ctx, tenant.Plan)
	amount := priceForCycle(cfg, tenant.BillingCycle)

	invoice, err := s.invoices.BuildInvoice(invoicing.Request{
		TenantID:      tenantID,
		ChangeType:    models.ChangeTypeRenewal,
		Plan:          tenant.Plan,
		Amount:        amount,
		Description:   fmt.Sprintf("Renewal of %s plan", tenant.Plan),
		BillingPeriod: billingPeriodLabel(tenant.BillingCycle, now),
	})
	if err != nil {
		return nil, err
	}

	start := now
	if tenant.SubscriptionEndDate != nil && tenant.SubscriptionEndDate.After(now) {
		start = *tenant.SubscriptionEndDate
	}
	end := periodEnd(start, tenant.BillingCycle)
	tenant.SubscriptionStartDate = &start
	tenant.SubscriptionEndDate = &end

	err = s.repo.Transaction(func(tx Repository) error {
		if ierr := tx.CreateInvoice(invoice); ierr != nil {
			return ierr
		}
		if uerr := tx.UpdateTenant(tenant); uerr != nil {
			return uerr
		}
		return tx.AppendHistory(&models.SubscriptionHistory{
			TenantID:       tenantID,
			FromPlan:       tenant.Plan,
			ToPlan:         tenant.Plan,
			FromCycle:      tenant.BillingCycle,
			ToCycle:        tenant.BillingCycle,
			ChangeType:     models.ChangeTypeRenewal,
			ProratedAmount: amount.Round(2),
			EffectiveDate:  now,
			ActorID:        actorID,
			Metadata:       jsonMetadata(map[string]interface{}{"invoice_number": invoice.Number}),
		})
	})
	if err != nil {
		log.Errorw("renewal persistence failed", "tenant_id", tenantID, "error", err)
		return nil, apperr.Internal(err, "renewing subscription for tenant %d", tenantID)
	}

	log.Infow("subscription renewed", "tenant_id", tenantID, "plan", tenant.Plan, "amount", amount.String())
	return invoice, nil
}

// StartTrial begins a trial period for a freshly onboarded tenant.
func (s *Service) StartTrial(ctx context.Context, tenantID uint, plan string, days int, actorID uint) error {
	if days <= 0 {
		return apperr.Validation("trial length must be positive, got %d", days)
	}
	if !isValidPlan(plan) {
		return apperr.Validation("unknown plan %q", plan)
	}

	tenant, err := s.getTenant(tenantID, "start trial")
	if err != nil {
		return err
	}

	now := s.now()
	trialEnd := now.AddDate(0, 0, days)
	fromPlan := tenant.Plan

	tenant.Plan = normalizePlan(plan)
	tenant.SubscriptionStatus = models.SubscriptionStatusActive
	tenant.IsInTrial = true
	tenant.TrialEndsAt = &trialEnd
	tenant.SubscriptionStartDate = &now
	tenant.SubscriptionEndDate = &trialEnd

	err = s.repo.Transaction(func(tx Repository) error {
		if uerr := tx.UpdateTenant(tenant); uerr != nil {
			return uerr
		}
		return tx.AppendHistory(&models.SubscriptionHistory{
			TenantID:      tenantID,
			FromPlan:      fromPlan,
			ToPlan:        tenant.Plan,
			FromCycle:     tenant.BillingCycle,
			ToCycle:       tenant.BillingCycle,
			ChangeType:    models.ChangeTypeTrialStart,
			EffectiveDate: now,
			ActorID:       actorID,
			Metadata:      jsonMetadata(map[string]interface{}{"trial_days": days}),
		})
	})
	if err != nil {
		log.Errorw("trial start failed", "tenant_id", tenantID, "error", err)
		return apperr.Internal(err, "starting trial for tenant %d", tenantID)
	}

	log.Infow("trial started", "tenant_id", tenantID, "plan", tenant.Plan, "trial_days", days)
	return nil
}

// EndTrial marks a tenant's trial as finished without touching plan or
// status; billing continues on the regular cycle.
func (s *Service) EndTrial(ctx context.Context, tenantID uint, actorID uint) error {
	tenant, err := s.getTenant(tenantID, "end trial")
	if err != nil {
		return err
	}
	if !tenant.IsInTrial {
		return apperr.Validation("tenant %d is not in a trial", tenantID)
	}

	now := s.now()
	tenant.IsInTrial = false
	tenant.TrialEndsAt = nil

	err = s.repo.Transaction(func(tx Repository) error {
		if uerr := tx.UpdateTenant(tenant); uerr != nil {
			return uerr
		}
		return tx.AppendHistory(&models.SubscriptionHistory{
			TenantID:      tenantID,
			FromPlan:      tenant.Plan,
			ToPlan:        tenant.Plan,
			FromCycle:     tenant.BillingCycle,
			ToCycle:       tenant.BillingCycle,
			ChangeType:    models.ChangeTypeTrialEnd,
			EffectiveDate: now,
			ActorID:       actorID,
		})
	})
	if err != nil {
		log.Errorw("trial end failed", "tenant_id", tenantID, "error", err)
		return apperr.Internal(err, "ending trial for tenant %d", tenantID)
	}

	log.Infow("trial ended", "tenant_id", tenantID)
	return nil
}

// ValidatePlanLimits audits current vehicle/user/driver counts against the
// tenant's plan limits. Read-only; never blocks or truncates usage.
func (s *Service) ValidatePlanLimits(ctx context.Context, tenantID uint) (*LimitCheck, error) {
	tenant, err := s.getTenant(tenantID, "validate plan limits")
	if err != nil {
		return nil, err
	}

	cfg := s.GetPlanConfig(ctx, tenant.Plan)
	check := &LimitCheck{WithinLimits: true, Violations: []string{}}

	type limit struct {
		name  string
		max   int
		count func(uint) (int64, error)
	}
	for _, l := range []limit{
		{"vehicles", cfg.MaxVehicles, s.repo.CountVehicles},
		{"users", cfg.MaxUsers, s.repo.CountUsers},
		{"drivers", cfg.MaxDrivers, s.repo.CountDrivers},
	} {
		if models.IsUnlimited(l.max) {
			continue
		}
		n, cerr := l.count(tenantID)
		if cerr != nil {
			log.Errorw("plan limit count failed", "tenant_id", tenantID, "resource", l.name, "error", cerr)
			return nil, apperr.Internal(cerr, "counting %s for tenant %d", l.name, tenantID)
		}
		if n > int64(l.max) {
			check.WithinLimits = false
			check.Violations = append(check.Violations,
				fmt.Sprintf("%s: %d in use exceeds the %s plan limit of %d", l.name, n, cfg.Plan, l.max))
		}
	}

	return check, nil
}

// GetHistory returns the tenant's subscription audit trail, newest first.
func (s *Service) GetHistory(ctx context.Context, tenantID uint, limit int) ([]models.SubscriptionHistory, error) {
	if _, err := s.getTenant(tenantID, "get history"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.repo.ListHistoryByTenant(tenantID, limit)
	if err != nil {
		log.Errorw("history listing failed", "tenant_id", tenantID, "error", err)
		return nil, apperr.Internal(err, "listing history for tenant %d", tenantID)
	}
	return rows, nil
}

// ListDueForRenewal exposes renewal candidates for the renewal ticker.
func (s *Service) ListDueForRenewal(ctx context.Context) ([]models.Tenant, error) {
	tenants, err := s.repo.ListDueForRenewal(s.now())
	if err != nil {
		log.Errorw("renewal scan failed", "error", err)
		return nil, apperr.Internal(err, "scanning tenants due for renewal")
	}
	return tenants, nil
}

func (s *Service) getTenant(tenantID uint, op string) (*models.Tenant, error) {
	tenant, err := s.repo.GetTenant(tenantID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("tenant %d not found", tenantID)
		}
		log.Errorw("tenant lookup failed", "tenant_id", tenantID, "operation", op, "error", err)
		return nil, apperr.Internal(err, "loading tenant %d", tenantID)
	}
	return tenant, nil
}

// periodEnd advances one billing period from start.
func periodEnd(start time.Time, cycle string) time.Time {
	if normalizeCycle(cycle) == models.BillingCycleYearly {
		return start.AddDate(1, 0, 0)
	}
	return start.AddDate(0, 1, 0)
}

func billingPeriodLabel(cycle string, now time.Time) string {
	if normalizeCycle(cycle) == models.BillingCycleYearly {
		return fmt.Sprintf("%d", now.Year())
	}
	return now.Format("2006-01")
}

func jsonMetadata(m map[string]interface{}) datatypes.JSON {
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	return datatypes.JSON(data)
}
