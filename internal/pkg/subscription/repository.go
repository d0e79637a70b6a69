package subscription

import (
	"time"

	"github.com/manyinyire/fleetbackend/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the subscription service.
type Repository interface {
	GetTenant(id uint) (*models.Tenant, error)
	UpdateTenant(t *models.Tenant) error
	GetPlanConfig(plan string) (*models.PlanConfig, error)
	ListPlanConfigs() ([]models.PlanConfig, error)
	UpsertPlanConfig(cfg *models.PlanConfig) error
	AppendHistory(h *models.SubscriptionHistory) error
	ListHistoryByTenant(tenantID uint, limit int) ([]models.SubscriptionHistory, error)
	CreateInvoice(inv *models.Invoice) error
	CountVehicles(tenantID uint) (int64, error)
	CountUsers(tenantID uint) (int64, error)
	CountDrivers(tenantID uint) (int64, error)
	ListDueForRenewal(now time.Time) ([]models.Tenant, error)

	// Transaction runs fn against a repository bound to a DB transaction.
	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a subscription repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetTenant(id uint) (*models.Tenant, error) {
	var t models.Tenant
	if err := r.db.First(&t, id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) UpdateTenant(t *models.Tenant) error {
	return r.db.Save(t).Error
}

func (r *gormRepository) GetPlanConfig(plan string) (*models.PlanConfig, error) {
	var cfg models.PlanConfig
	err := r.db.Where("plan = ? AND is_active = ?", plan, true).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *gormRepository) ListPlanConfigs() ([]models.PlanConfig, error) {
	var cfgs []models.PlanConfig
	err := r.db.Where("is_active = ?", true).Order("monthly_price ASC").Find(&cfgs).Error
	return cfgs, err
}

func (r *gormRepository) UpsertPlanConfig(cfg *models.PlanConfig) error {
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "plan"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"display_name",
			"monthly_price",
			"yearly_price",
			"features",
			"max_vehicles",
			"max_users",
			"max_drivers",
			"is_active",
			"updated_at",
		}),
	}).Create(cfg).Error
}

func (r *gormRepository) AppendHistory(h *models.SubscriptionHistory) error {
	return r.db.Create(h).Error
}

func (r *gormRepository) CreateInvoice(inv *models.Invoice) error {
	return r.db.Create(inv).Error
}

func (r *gormRepository) ListHistoryByTenant(tenantID uint, limit int) ([]models.SubscriptionHistory, error) {
	var rows []models.SubscriptionHistory
	err := r.db.Where("tenant_id = ?", tenantID).
		Order("effective_date DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *gormRepository) CountVehicles(tenantID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Vehicle{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}

func (r *gormRepository) CountUsers(tenantID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.User{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}

func (r *gormRepository) CountDrivers(tenantID uint) (int64, error) {
	var n int64
	err := r.db.Model(&models.Driver{}).Where("tenant_id = ?", tenantID).Count(&n).Error
	return n, err
}

func (r *gormRepository) ListDueForRenewal(now time.Time) ([]models.Tenant, error) {
	var tenants []models.Tenant
	err := r.db.
		Where("auto_renew = ? AND subscription_status = ? AND subscription_end_date IS NOT NULL AND subscription_end_date <= ?",
			true, models.SubscriptionStatusActive, now).
		Find(&tenants).Error
	return tenants, err
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
