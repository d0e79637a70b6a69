package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserHashesPassword(t *testing.T) {
	tenantID := uint(7)
	user, err := CreateUser(&tenantID, "Jane Moyo", "jane@example.com", "s3cret-pass", RoleTenantAdmin)
	require.NoError(t, err)

	assert.Equal(t, &tenantID, user.TenantID)
	assert.Equal(t, RoleTenantAdmin, user.Role)
	assert.Equal(t, UserStatusActive, user.Status)
	assert.NotEqual(t, "s3cret-pass", user.Password)

	assert.True(t, user.CheckPassword("s3cret-pass"))
	assert.False(t, user.CheckPassword("wrong-pass"))
}

func TestCreateUserValidation(t *testing.T) {
	tenantID := uint(7)
	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     string
	}{
		{"short name", "J", "jane@example.com", "s3cret-pass", RoleStaff},
		{"bad email", "Jane Moyo", "not-an-email", "s3cret-pass", RoleStaff},
		{"short password", "Jane Moyo", "jane@example.com", "short", RoleStaff},
		{"unknown role", "Jane Moyo", "jane@example.com", "s3cret-pass", "root"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CreateUser(&tenantID, tt.userName, tt.email, tt.password, tt.role)
			assert.Error(t, err)
		})
	}
}

func TestUserIsActive(t *testing.T) {
	user := User{Status: UserStatusActive}
	assert.True(t, user.IsActive())

	user.Status = UserStatusDisabled
	assert.False(t, user.IsActive())

	user.Status = UserStatusInactive
	assert.False(t, user.IsActive())
}
