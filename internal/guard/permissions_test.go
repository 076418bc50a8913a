package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Permission sets must be monotonically non-decreasing up the hierarchy:
// every permission granted to a role is granted to every higher role.
func TestPermissionSetsAreMonotonic(t *testing.T) {
	roles := AllRoles()
	for i := 0; i < len(roles)-1; i++ {
		lower := PermissionsFor(roles[i])
		higher := PermissionsFor(roles[i+1])
		for action := range lower {
			_, ok := higher[action]
			assert.True(t, ok, "%s grants %s but %s does not", roles[i], action, roles[i+1])
		}
	}
}

func TestPermissionsForUnknownRole(t *testing.T) {
	assert.Nil(t, PermissionsFor(Role("superuser")))
	assert.False(t, Permits(Role("superuser"), ActionView))
}

func TestAdminHoldsEveryAction(t *testing.T) {
	for _, action := range AllActions() {
		assert.True(t, Permits(RoleAdmin, action), "admin missing %s", action)
	}
}

func TestReadonlyHoldsOnlyView(t *testing.T) {
	perms := PermissionsFor(RoleSupportReadonly)
	assert.Len(t, perms, 1)
	assert.True(t, Permits(RoleSupportReadonly, ActionView))
}
