package models

import "fmt"

// Role partitions the connection registry and selects the signing secret
// used to verify a bearer token.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a known enum value.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleBusiness, RoleAdmin:
		return true
	default:
		return false
	}
}

// AllRoles returns every known role, in secret-lookup order.
func AllRoles() []Role {
	return []Role{RoleCustomer, RoleBusiness, RoleAdmin}
}

// ParseRole converts a wire-level role string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}
