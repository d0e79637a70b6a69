package repository

import (
	"github.com/manyinyire/fleetbackend/app/models"
	"gorm.io/gorm"
)

// TenantRepository defines the interface for tenant-related database operations
type TenantRepository interface {
	Create(tenant *models.Tenant) error
	GetByID(id uint) (*models.Tenant, error)
	Update(tenant *models.Tenant) error
	List(offset, limit int) ([]models.Tenant, error)
	Count() (int64, error)
	Search(query string) ([]models.Tenant, error)
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByTenantID(tenantID uint, offset, limit int) ([]models.User, error)
	CountByTenantID(tenantID uint) (int64, error)
}

// DriverRepository defines the interface for driver-related database operations
type DriverRepository interface {
	Create(driver *models.Driver) error
	GetByID(id uint) (*models.Driver, error)
	GetByTenantID(tenantID uint, offset, limit int) ([]models.Driver, error)
	Update(driver *models.Driver) error
	CountByTenantID(tenantID uint) (int64, error)
}

// VehicleRepository defines the interface for vehicle-related database operations
type VehicleRepository interface {
	Create(vehicle *models.Vehicle) error
	GetByID(id uint) (*models.Vehicle, error)
	GetByTenantID(tenantID uint, offset, limit int) ([]models.Vehicle, error)
	AssignDriver(vehicleID uint, driverID *uint) error
	Update(vehicle *models.Vehicle) error
	CountByTenantID(tenantID uint) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Tenant  TenantRepository
	User    UserRepository
	Driver  DriverRepository
	Vehicle VehicleRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Tenant:  NewTenantRepository(db),
		User:    NewUserRepository(db),
		Driver:  NewDriverRepository(db),
		Vehicle: NewVehicleRepository(db),
	}
}
