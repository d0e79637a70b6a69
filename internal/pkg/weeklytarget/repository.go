package weeklytarget

import (
	"time"

	"github.com/manyinyire/fleetbackend/app/models"
	"gorm.io/gorm"
)

// Repository provides DB operations used by the weekly target service.
type Repository interface {
	GetDriver(id uint) (*models.Driver, error)
	GetVehicle(id uint) (*models.Vehicle, error)
	GetTargetByDriverAndWeek(driverID uint, weekStart time.Time) (*models.WeeklyTarget, error)
	CreateTarget(t *models.WeeklyTarget) error
	UpdateTarget(t *models.WeeklyTarget) error
	ListActiveTargetsByWeek(weekStart time.Time) ([]models.WeeklyTarget, error)
	ListTargetsByWeek(weekStart time.Time) ([]models.WeeklyTarget, error)
	ListTargetsByDriver(driverID uint, limit int) ([]models.WeeklyTarget, error)
	CreateRemittance(r *models.Remittance) error

	// Transaction runs fn against a repository bound to a DB transaction.
	Transaction(fn func(Repository) error) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a weekly target repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetDriver(id uint) (*models.Driver, error) {
	var d models.Driver
	if err := r.db.First(&d, id).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *gormRepository) GetVehicle(id uint) (*models.Vehicle, error) {
	var v models.Vehicle
	if err := r.db.First(&v, id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *gormRepository) GetTargetByDriverAndWeek(driverID uint, weekStart time.Time) (*models.WeeklyTarget, error) {
	var t models.WeeklyTarget
	err := r.db.Where("driver_id = ? AND week_start = ?", driverID, weekStart).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *gormRepository) CreateTarget(t *models.WeeklyTarget) error {
	return r.db.Create(t).Error
}

func (r *gormRepository) UpdateTarget(t *models.WeeklyTarget) error {
	return r.db.Save(t).Error
}

func (r *gormRepository) ListActiveTargetsByWeek(weekStart time.Time) ([]models.WeeklyTarget, error) {
	var targets []models.WeeklyTarget
	err := r.db.
		Where("status = ? AND week_start = ?", models.WeeklyTargetStatusActive, weekStart).
		Find(&targets).Error
	return targets, err
}

func (r *gormRepository) ListTargetsByWeek(weekStart time.Time) ([]models.WeeklyTarget, error) {
	var targets []models.WeeklyTarget
	err := r.db.
		Preload("Driver").
		Preload("Vehicle").
		Where("week_start = ?", weekStart).
		Find(&targets).Error
	return targets, err
}

func (r *gormRepository) ListTargetsByDriver(driverID uint, limit int) ([]models.WeeklyTarget, error) {
	var targets []models.WeeklyTarget
	err := r.db.
		Where("driver_id = ?", driverID).
		Order("week_start DESC").
		Limit(limit).
		Find(&targets).Error
	return targets, err
}

func (r *gormRepository) CreateRemittance(rem *models.Remittance) error {
	return r.db.Create(rem).Error
}

func (r *gormRepository) Transaction(fn func(Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepository{db: tx})
	})
}
