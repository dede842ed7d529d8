package types

import "strings"

// Role is the authorization role stored on a user account.
type Role string

// Supported roles.
const (
	RoleEmployee Role = "Employee"
	RoleAdmin    Role = "Admin"
	RoleManager  Role = "Manager"
	RoleHR       Role = "HR"
)

// Valid reports whether r is one of the supported roles.
func (r Role) Valid() bool {
	switch r {
	case RoleEmployee, RoleAdmin, RoleManager, RoleHR:
		return true
	default:
		return false
	}
}

// ParseRole resolves a role name case-insensitively.
func ParseRole(value string) (Role, bool) {
	value = strings.TrimSpace(value)
	for _, role := range []Role{RoleEmployee, RoleAdmin, RoleManager, RoleHR} {
		if strings.EqualFold(value, string(role)) {
			return role, true
		}
	}
	return "", false
}

// Tier is a named minimum-privilege level required to invoke an operation.
// Tiers are cumulative: every role admitted by a higher tier is also
// admitted by the lower ones.
type Tier int

// Supported tiers, from least to most privileged.
const (
	TierEmployee Tier = iota
	TierManager
	TierHR
	TierAdmin
)

// String returns the tier name used in logs and error messages.
func (t Tier) String() string {
	switch t {
	case TierEmployee:
		return "Employee"
	case TierManager:
		return "Manager"
	case TierHR:
		return "HR"
	case TierAdmin:
		return "Admin"
	default:
		return "Unknown"
	}
}
