package repository

import (
	"github.com/manyinyire/fleetbackend/app/models"
	"gorm.io/gorm"
)

// vehicleRepository implements the VehicleRepository interface
type vehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository creates a new vehicle repository instance
func NewVehicleRepository(db *gorm.DB) VehicleRepository {
	return &vehicleRepository{db: db}
}

// Create creates a new vehicle in the database
func (r *vehicleRepository) Create(vehicle *models.Vehicle) error {
	return r.db.Create(vehicle).Error
}

// GetByID retrieves a vehicle by its ID
func (r *vehicleRepository) GetByID(id uint) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	err := r.db.First(&vehicle, id).Error
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// GetByTenantID retrieves a tenant's vehicles with pagination
func (r *vehicleRepository) GetByTenantID(tenantID uint, offset, limit int) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	err := r.db.Where("tenant_id = ?", tenantID).
		Offset(offset).Limit(limit).
		Order("registration_number ASC").
		Find(&vehicles).Error
	return vehicles, err
}

// AssignDriver sets or clears the driver assigned to a vehicle
func (r *vehicleRepository) AssignDriver(vehicleID uint, driverID *uint) error {
	return r.db.Model(&models.Vehicle{}).Where("id = ?", vehicleID).
		Update("assigned_driver_id", driverID).Error
}

// Update persists changes to a vehicle
func (r *vehicleRepository) Update(vehicle *models.Vehicle) error {
	return r.db.Save(vehicle).Error
}

// CountByTenantID returns how many vehicles a tenant has
func (r *vehicleRepository) CountByTenantID(tenantID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Vehicle{}).Where("tenant_id = ?", tenantID).Count(&count).Error
	return count, err
}
