package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"github.com/manyinyire/fleetbackend/internal/pkg/invoicing"
)

type fakeRepo struct {
	tenants      map[uint]*models.Tenant
	planConfigs  map[string]*models.PlanConfig
	history      []models.SubscriptionHistory
	invoices     []models.Invoice
	vehicleCount int64
	userCount    int64
	driverCount  int64
}

func newFakeRepo(tenants ...*models.Tenant) *fakeRepo {
	r := &fakeRepo{
		tenants:     map[uint]*models.Tenant{},
		planConfigs: map[string]*models.PlanConfig{},
	}
	for _, t := range tenants {
		r.tenants[t.ID] = t
	}
	return r
}

func (r *fakeRepo) GetTenant(id uint) (*models.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeRepo) UpdateTenant(t *models.Tenant) error {
	cp := *t
	r.tenants[t.ID] = &cp
	return nil
}

func (r *fakeRepo) GetPlanConfig(plan string) (*models.PlanConfig, error) {
	cfg, ok := r.planConfigs[plan]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return cfg, nil
}

func (r *fakeRepo) ListPlanConfigs() ([]models.PlanConfig, error) {
	out := make([]models.PlanConfig, 0, len(r.planConfigs))
	for _, cfg := range r.planConfigs {
		out = append(out, *cfg)
	}
	return out, nil
}

func (r *fakeRepo) UpsertPlanConfig(cfg *models.PlanConfig) error {
	cp := *cfg
	r.planConfigs[cfg.Plan] = &cp
	return nil
}

func (r *fakeRepo) AppendHistory(h *models.SubscriptionHistory) error {
	h.ID = uint(len(r.history) + 1)
	r.history = append(r.history, *h)
	return nil
}

func (r *fakeRepo) ListHistoryByTenant(tenantID uint, limit int) ([]models.SubscriptionHistory, error) {
	var rows []models.SubscriptionHistory
	for i := len(r.history) - 1; i >= 0 && len(rows) < limit; i-- {
		if r.history[i].TenantID == tenantID {
			rows = append(rows, r.history[i])
		}
	}
	return rows, nil
}

func (r *fakeRepo) CreateInvoice(inv *models.Invoice) error {
	inv.ID = uint(len(r.invoices) + 1)
	r.invoices = append(r.invoices, *inv)
	return nil
}

func (r *fakeRepo) CountVehicles(tenantID uint) (int64, error) { return r.vehicleCount, nil }
func (r *fakeRepo) CountUsers(tenantID uint) (int64, error)    { return r.userCount, nil }
func (r *fakeRepo) CountDrivers(tenantID uint) (int64, error)  { return r.driverCount, nil }

func (r *fakeRepo) ListDueForRenewal(now time.Time) ([]models.Tenant, error) {
	var due []models.Tenant
	for _, t := range r.tenants {
		if t.AutoRenew && t.SubscriptionStatus == models.SubscriptionStatusActive &&
			t.SubscriptionEndDate != nil && !t.SubscriptionEndDate.After(now) {
			due = append(due, *t)
		}
	}
	return due, nil
}

func (r *fakeRepo) Transaction(fn func(Repository) error) error {
	return fn(r)
}

type fakeInvoicer struct {
	created []invoicing.Request
}

func (f *fakeInvoicer) BuildInvoice(req invoicing.Request) (*models.Invoice, error) {
	f.created = append(f.created, req)
	return &models.Invoice{
		Number:     fmt.Sprintf("INV-TEST-%d", len(f.created)),
		TenantID:   req.TenantID,
		ChangeType: req.ChangeType,
		Plan:       req.Plan,
		Amount:     req.Amount,
		Status:     models.InvoiceStatusPending,
	}, nil
}

// failingTxRepo aborts every transaction before running it, standing in for
// a rolled-back commit.
type failingTxRepo struct {
	*fakeRepo
}

func (r *failingTxRepo) Transaction(fn func(Repository) error) error {
	return errors.New("deadlock found when trying to get lock")
}

var testNow = time.Date(2025, 6, 16, 10, 0, 0, 0, time.UTC)

func newTestService(repo *fakeRepo, inv *fakeInvoicer) *Service {
	s := NewService(repo, inv)
	s.now = func() time.Time { return testNow }
	return s
}

func activeTenant(id uint, plan string) *models.Tenant {
	start := testNow.AddDate(0, 0, -15)
	end := start.AddDate(0, 0, 30)
	return &models.Tenant{
		ID:                    id,
		Name:                  "Harare Cabs",
		Status:                "active",
		Plan:                  plan,
		BillingCycle:          models.BillingCycleMonthly,
		SubscriptionStatus:    models.SubscriptionStatusActive,
		SubscriptionStartDate: &start,
		SubscriptionEndDate:   &end,
		AutoRenew:             true,
	}
}

func TestChangePlanRejectsSamePlanAndCycle(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanBasic))
	inv := &fakeInvoicer{}
	s := newTestService(repo, inv)

	_, err := s.ChangePlan(context.Background(), 1, ChangePlanOptions{
		NewPlan:      models.PlanBasic,
		BillingCycle: models.BillingCycleMonthly,
	}, 7)

	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Empty(t, inv.created)
	assert.Empty(t, repo.history)
}

func TestChangePlanRejectsUnknownPlan(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanBasic))
	s := newTestService(repo, &fakeInvoicer{})

	_, err := s.ChangePlan(context.Background(), 1, ChangePlanOptions{NewPlan: "enterprise"}, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestChangePlanUnknownTenant(t *testing.T) {
	s := newTestService(newFakeRepo(), &fakeInvoicer{})

	_, err := s.ChangePlan(context.Background(), 99, ChangePlanOptions{NewPlan: models.PlanBasic}, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsNotFound(err))
}

func TestChangePlanUpgrade(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanFree))
	inv := &fakeInvoicer{}
	s := newTestService(repo, inv)

	result, err := s.ChangePlan(context.Background(), 1, ChangePlanOptions{NewPlan: models.PlanPremium}, 7)
	require.NoError(t, err)
	require.NotNil(t, result.Invoice)
	assert.True(t, result.Invoice.Amount.Equal(decimal.RequireFromString("99.99")),
		"invoice amount = %s", result.Invoice.Amount)

	require.Len(t, repo.history, 1)
	h := repo.history[0]
	assert.Equal(t, models.ChangeTypeUpgrade, h.ChangeType)
	assert.Equal(t, models.PlanFree, h.FromPlan)
	assert.Equal(t, models.PlanPremium, h.ToPlan)
	assert.Equal(t, uint(7), h.ActorID)

	// The plan itself flips only on payment confirmation.
	tenant, _ := repo.GetTenant(1)
	assert.Equal(t, models.PlanFree, tenant.Plan)

	// The invoice is persisted in the same transaction as the history row.
	require.Len(t, repo.invoices, 1)
	assert.Equal(t, result.Invoice.Number, repo.invoices[0].Number)
}

func TestChangePlanFailedTransactionLeavesNoInvoice(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanFree))
	inv := &fakeInvoicer{}
	s := newTestService(repo, inv)
	s.repo = &failingTxRepo{fakeRepo: repo}

	_, err := s.ChangePlan(context.Background(), 1, ChangePlanOptions{NewPlan: models.PlanPremium}, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsInternal(err))

	// The aborted transaction must not leave a pending invoice or history
	// row behind.
	assert.Empty(t, repo.invoices)
	assert.Empty(t, repo.history)
}

func TestRenewFailedTransactionLeavesNoInvoice(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanBasic))
	s := newTestService(repo, &fakeInvoicer{})
	s.repo = &failingTxRepo{fakeRepo: repo}

	_, err := s.RenewSubscription(context.Background(), 1, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsInternal(err))
	assert.Empty(t, repo.invoices)
	assert.Empty(t, repo.history)
}

func TestChangePlanCycleSwitchPersistsImmediately(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanBasic))
	s := newTestService(repo, &fakeInvoicer{})

	_, err := s.ChangePlan(context.Background(), 1, ChangePlanOptions{
		NewPlan:      models.PlanBasic,
		BillingCycle: models.BillingCycleYearly,
	}, 7)
	require.NoError(t, err)

	tenant, _ := repo.GetTenant(1)
	assert.Equal(t, models.BillingCycleYearly, tenant.BillingCycle)

	// Same plan rank on a pure cycle switch records as a downgrade.
	require.Len(t, repo.history, 1)
	assert.Equal(t, models.ChangeTypeDowngrade, repo.history[0].ChangeType)
}

func TestChangePlanProratedDowngradeClampsToZero(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanPremium))
	inv := &fakeInvoicer{}
	s := newTestService(repo, inv)

	result, err := s.ChangePlan(context.Background(), 1, ChangePlanOptions{
		NewPlan: models.PlanBasic,
		Prorate: true,
	}, 7)
	require.NoError(t, err)
	require.NotNil(t, result.Proration)

	// Credit from the unused premium days exceeds the basic price.
	assert.True(t, result.Proration.CreditAmount.GreaterThan(decimal.RequireFromString("29.99")))
	assert.True(t, result.Invoice.Amount.IsZero(), "invoice amount = %s", result.Invoice.Amount)
}

func TestCancelSubscriptionImmediate(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanPremium))
	s := newTestService(repo, &fakeInvoicer{})

	err := s.CancelSubscription(context.Background(), 1, true, "too expensive", 7)
	require.NoError(t, err)

	tenant, _ := repo.GetTenant(1)
	assert.Equal(t, models.SubscriptionStatusCanceled, tenant.SubscriptionStatus)
	assert.Equal(t, models.PlanFree, tenant.Plan)
	assert.False(t, tenant.AutoRenew)
	assert.False(t, tenant.IsInTrial)
	require.NotNil(t, tenant.SubscriptionEndDate)
	assert.Equal(t, testNow, *tenant.SubscriptionEndDate)
	require.NotNil(t, tenant.CancellationRequestedAt)
	assert.Equal(t, "too expensive", tenant.CancellationReason)

	require.Len(t, repo.history, 1)
	h := repo.history[0]
	assert.Equal(t, models.ChangeTypeCancellation, h.ChangeType)
	assert.Equal(t, models.PlanPremium, h.FromPlan)
	assert.Equal(t, models.PlanFree, h.ToPlan)
}

func TestCancelSubscriptionDeferred(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanPremium))
	s := newTestService(repo, &fakeInvoicer{})

	err := s.CancelSubscription(context.Background(), 1, false, "", 7)
	require.NoError(t, err)

	tenant, _ := repo.GetTenant(1)
	assert.Equal(t, models.SubscriptionStatusActive, tenant.SubscriptionStatus)
	assert.Equal(t, models.PlanPremium, tenant.Plan)
	assert.False(t, tenant.AutoRenew)
}

func TestCancelSubscriptionTwiceRejected(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanBasic))
	s := newTestService(repo, &fakeInvoicer{})

	require.NoError(t, s.CancelSubscription(context.Background(), 1, true, "", 7))

	err := s.CancelSubscription(context.Background(), 1, true, "", 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Len(t, repo.history, 1)
}

func TestReactivateSubscription(t *testing.T) {
	tenant := activeTenant(1, models.PlanBasic)
	tenant.SubscriptionStatus = models.SubscriptionStatusCanceled
	tenant.AutoRenew = false
	repo := newFakeRepo(tenant)
	s := newTestService(repo, &fakeInvoicer{})

	err := s.ReactivateSubscription(context.Background(), 1, 7)
	require.NoError(t, err)

	got, _ := repo.GetTenant(1)
	assert.Equal(t, models.SubscriptionStatusActive, got.SubscriptionStatus)
	assert.True(t, got.AutoRenew)
	require.NotNil(t, got.SubscriptionStartDate)
	require.NotNil(t, got.SubscriptionEndDate)
	assert.Equal(t, testNow, *got.SubscriptionStartDate)
	assert.Equal(t, testNow.AddDate(0, 1, 0), *got.SubscriptionEndDate)
	assert.Nil(t, got.CancellationRequestedAt)

	require.Len(t, repo.history, 1)
	assert.Equal(t, models.ChangeTypeReactivation, repo.history[0].ChangeType)
}

func TestReactivateActiveSubscriptionRejected(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanBasic))
	s := newTestService(repo, &fakeInvoicer{})

	err := s.ReactivateSubscription(context.Background(), 1, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestRenewSubscription(t *testing.T) {
	tenant := activeTenant(1, models.PlanBasic)
	repo := newFakeRepo(tenant)
	inv := &fakeInvoicer{}
	s := newTestService(repo, inv)

	invoice, err := s.RenewSubscription(context.Background(), 1, 7)
	require.NoError(t, err)
	assert.True(t, invoice.Amount.Equal(decimal.RequireFromString("29.99")),
		"invoice amount = %s", invoice.Amount)

	// The new period starts where the old one ends, not at "now".
	got, _ := repo.GetTenant(1)
	require.NotNil(t, got.SubscriptionStartDate)
	assert.Equal(t, *tenant.SubscriptionEndDate, *got.SubscriptionStartDate)
	assert.Equal(t, tenant.SubscriptionEndDate.AddDate(0, 1, 0), *got.SubscriptionEndDate)

	require.Len(t, repo.history, 1)
	assert.Equal(t, models.ChangeTypeRenewal, repo.history[0].ChangeType)
}

func TestRenewSubscriptionWithoutAutoRenewRejected(t *testing.T) {
	tenant := activeTenant(1, models.PlanBasic)
	tenant.AutoRenew = false
	repo := newFakeRepo(tenant)
	s := newTestService(repo, &fakeInvoicer{})

	_, err := s.RenewSubscription(context.Background(), 1, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestStartAndEndTrial(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanFree))
	s := newTestService(repo, &fakeInvoicer{})

	err := s.StartTrial(context.Background(), 1, models.PlanPremium, 14, 7)
	require.NoError(t, err)

	tenant, _ := repo.GetTenant(1)
	assert.True(t, tenant.IsInTrial)
	assert.Equal(t, models.PlanPremium, tenant.Plan)
	assert.Equal(t, models.SubscriptionStatusActive, tenant.SubscriptionStatus)
	require.NotNil(t, tenant.TrialEndsAt)
	assert.Equal(t, testNow.AddDate(0, 0, 14), *tenant.TrialEndsAt)

	err = s.EndTrial(context.Background(), 1, 7)
	require.NoError(t, err)

	tenant, _ = repo.GetTenant(1)
	assert.False(t, tenant.IsInTrial)
	assert.Nil(t, tenant.TrialEndsAt)
	assert.Equal(t, models.PlanPremium, tenant.Plan)

	require.Len(t, repo.history, 2)
	assert.Equal(t, models.ChangeTypeTrialStart, repo.history[0].ChangeType)
	assert.Equal(t, models.ChangeTypeTrialEnd, repo.history[1].ChangeType)
}

func TestStartTrialValidation(t *testing.T) {
	s := newTestService(newFakeRepo(activeTenant(1, models.PlanFree)), &fakeInvoicer{})

	err := s.StartTrial(context.Background(), 1, models.PlanBasic, 0, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	err = s.StartTrial(context.Background(), 1, "gold", 14, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestEndTrialWithoutTrialRejected(t *testing.T) {
	s := newTestService(newFakeRepo(activeTenant(1, models.PlanBasic)), &fakeInvoicer{})

	err := s.EndTrial(context.Background(), 1, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestValidatePlanLimits(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanFree))
	repo.vehicleCount = 3
	repo.userCount = 1
	repo.driverCount = 5
	s := newTestService(repo, &fakeInvoicer{})

	check, err := s.ValidatePlanLimits(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, check.WithinLimits)
	require.Len(t, check.Violations, 2)
	assert.Contains(t, check.Violations[0], "vehicles")
	assert.Contains(t, check.Violations[1], "drivers")
}

func TestValidatePlanLimitsUnlimitedPlan(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanPremium))
	repo.vehicleCount = 500
	repo.userCount = 500
	repo.driverCount = 500
	s := newTestService(repo, &fakeInvoicer{})

	check, err := s.ValidatePlanLimits(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, check.WithinLimits)
	assert.Empty(t, check.Violations)
}

func TestGetSubscriptionDetails(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanBasic))
	s := newTestService(repo, &fakeInvoicer{})

	details, err := s.GetSubscriptionDetails(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, models.PlanBasic, details.Plan)
	assert.True(t, details.CanUpgrade)
	assert.True(t, details.CanDowngrade)
	require.NotNil(t, details.DaysUntilRenewal)
	assert.Equal(t, 15, *details.DaysUntilRenewal)
	assert.True(t, details.CurrentPeriodPrice.Equal(decimal.RequireFromString("29.99")))
}

func TestGetPlanConfigPrefersPersistedOverride(t *testing.T) {
	repo := newFakeRepo()
	override := DefaultPlanConfig(models.PlanBasic)
	override.MonthlyPrice = decimal.RequireFromString("19.99")
	require.NoError(t, repo.UpsertPlanConfig(&override))
	s := newTestService(repo, &fakeInvoicer{})

	cfg := s.GetPlanConfig(context.Background(), models.PlanBasic)
	assert.True(t, cfg.MonthlyPrice.Equal(decimal.RequireFromString("19.99")))

	// No override stored for premium, so defaults apply.
	premium := s.GetPlanConfig(context.Background(), models.PlanPremium)
	assert.True(t, premium.MonthlyPrice.Equal(decimal.RequireFromString("99.99")))
}

func TestSeedPlanConfigs(t *testing.T) {
	repo := newFakeRepo()
	s := newTestService(repo, &fakeInvoicer{})

	require.NoError(t, s.SeedPlanConfigs(context.Background()))
	assert.Len(t, repo.planConfigs, 3)
}

func TestGetHistory(t *testing.T) {
	repo := newFakeRepo(activeTenant(1, models.PlanFree))
	s := newTestService(repo, &fakeInvoicer{})

	require.NoError(t, s.StartTrial(context.Background(), 1, models.PlanBasic, 7, 7))
	require.NoError(t, s.EndTrial(context.Background(), 1, 7))

	rows, err := s.GetHistory(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Newest first.
	assert.Equal(t, models.ChangeTypeTrialEnd, rows[0].ChangeType)
}
