package repository

import (
	"github.com/manyinyire/fleetbackend/app/models"
	"gorm.io/gorm"
)

// driverRepository implements the DriverRepository interface
type driverRepository struct {
	db *gorm.DB
}

// NewDriverRepository creates a new driver repository instance
func NewDriverRepository(db *gorm.DB) DriverRepository {
	return &driverRepository{db: db}
}

// Create creates a new driver in the database
func (r *driverRepository) Create(driver *models.Driver) error {
	return r.db.Create(driver).Error
}

// GetByID retrieves a driver by its ID
func (r *driverRepository) GetByID(id uint) (*models.Driver, error) {
	var driver models.Driver
	err := r.db.First(&driver, id).Error
	if err != nil {
		return nil, err
	}
	return &driver, nil
}

// GetByTenantID retrieves a tenant's drivers with pagination
func (r *driverRepository) GetByTenantID(tenantID uint, offset, limit int) ([]models.Driver, error) {
	var drivers []models.Driver
	err := r.db.Where("tenant_id = ?", tenantID).
		Offset(offset).Limit(limit).
		Order("full_name ASC").
		Find(&drivers).Error
	return drivers, err
}

// Update persists changes to a driver
func (r *driverRepository) Update(driver *models.Driver) error {
	return r.db.Save(driver).Error
}

// CountByTenantID returns how many drivers a tenant has
func (r *driverRepository) CountByTenantID(tenantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Driver{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}
