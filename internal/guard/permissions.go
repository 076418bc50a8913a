package guard

// grants lists the permissions each role adds on top of the role below
// it. Effective permission sets are the cumulative union up the
// hierarchy, so monotonicity holds by construction rather than by
// maintaining three overlapping lists.
var grants = map[Role][]Action{
	RoleSupportReadonly:     {ActionView},
	RoleSupportWriteLimited: {ActionEditProfile, ActionDisableUploads},
	RoleAdmin:               {ActionDeleteUser, ActionExportData, ActionManageRoles},
}

// PermissionsFor returns the effective permission set for a role: its own
// grants plus every grant of the roles beneath it.
func PermissionsFor(role Role) map[Action]struct{} {
	idx, ok := roleOrder[role]
	if !ok {
		return nil
	}
	perms := make(map[Action]struct{})
	for r, i := range roleOrder {
		if i > idx {
			continue
		}
		for _, a := range grants[r] {
			perms[a] = struct{}{}
		}
	}
	return perms
}

// Permits reports whether the role's effective permission set contains
// the action.
func Permits(role Role, action Action) bool {
	_, ok := PermissionsFor(role)[action]
	return ok
}

// AllRoles returns the roles ordered from lowest to highest.
func AllRoles() []Role {
	return []Role{RoleSupportReadonly, RoleSupportWriteLimited, RoleAdmin}
}

// AllActions returns every known permission tag.
func AllActions() []Action {
	return []Action{
		ActionView,
		ActionEditProfile,
		ActionDisableUploads,
		ActionDeleteUser,
		ActionExportData,
		ActionManageRoles,
	}
}
