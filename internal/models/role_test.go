package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, role := range AllRoles() {
		parsed, err := ParseRole(role.String())
		require.NoError(t, err)
		assert.Equal(t, role, parsed)
	}

	for _, bad := range []string{"", "supplier", "Customer", "ADMIN"} {
		_, err := ParseRole(bad)
		assert.Error(t, err, "role %q must not parse", bad)
	}
}

func TestNewNotificationTargetField(t *testing.T) {
	n := NewNotification(RoleCustomer, "cust-1", "t", "c", "system")
	assert.Equal(t, "cust-1", n.Customer)
	assert.Empty(t, n.Business)
	assert.NotEmpty(t, n.ID)
	assert.False(t, n.CreatedAt.IsZero())

	n = NewNotification(RoleBusiness, "biz-1", "t", "c", "system")
	assert.Equal(t, "biz-1", n.Business)
	assert.Empty(t, n.Customer)

	// Admin pushes address the admin console, not a marketplace party.
	n = NewNotification(RoleAdmin, "admin-1", "t", "c", "system")
	assert.Empty(t, n.Customer)
	assert.Empty(t, n.Business)
}
