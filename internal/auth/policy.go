package auth

import "github.com/staffdesk/apiserver/types"

// Allows reports whether role may invoke an operation guarded by tier.
//
//	Employee tier: Employee, Manager, HR, Admin
//	Manager tier:  Manager, HR, Admin
//	HR tier:       HR, Admin
//	Admin tier:    Admin
func Allows(role types.Role, tier types.Tier) bool {
	rank, ok := roleRank(role)
	if !ok {
		return false
	}
	switch tier {
	case types.TierEmployee, types.TierManager, types.TierHR, types.TierAdmin:
		return rank >= tier
	default:
		return false
	}
}

// roleRank maps a role to the highest tier it satisfies.
func roleRank(role types.Role) (types.Tier, bool) {
	switch role {
	case types.RoleEmployee:
		return types.TierEmployee, true
	case types.RoleManager:
		return types.TierManager, true
	case types.RoleHR:
		return types.TierHR, true
	case types.RoleAdmin:
		return types.TierAdmin, true
	default:
		return 0, false
	}
}
