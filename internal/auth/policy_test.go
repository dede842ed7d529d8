package auth

import (
	"testing"

	"github.com/staffdesk/apiserver/types"
)

func TestAllows(t *testing.T) {
	roles := []types.Role{types.RoleEmployee, types.RoleManager, types.RoleHR, types.RoleAdmin}
	want := map[types.Tier]map[types.Role]bool{
		types.TierEmployee: {types.RoleEmployee: true, types.RoleManager: true, types.RoleHR: true, types.RoleAdmin: true},
		types.TierManager:  {types.RoleManager: true, types.RoleHR: true, types.RoleAdmin: true},
		types.TierHR:       {types.RoleHR: true, types.RoleAdmin: true},
		types.TierAdmin:    {types.RoleAdmin: true},
	}

	for tier, allowed := range want {
		for _, role := range roles {
			t.Run(tier.String()+"/"+string(role), func(t *testing.T) {
				if got := Allows(role, tier); got != allowed[role] {
					t.Fatalf("Allows(%s, %s) = %v, want %v", role, tier, got, allowed[role])
				}
			})
		}
	}
}

func TestAllowsRejectsUnknownValues(t *testing.T) {
	if Allows(types.Role("Owner"), types.TierEmployee) {
		t.Fatalf("expected unknown role to be denied")
	}
	if Allows(types.Role("admin"), types.TierEmployee) {
		t.Fatalf("expected role comparison to be exact")
	}
	if Allows(types.RoleAdmin, types.Tier(42)) {
		t.Fatalf("expected unknown tier to be denied")
	}
}
