package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func activeRecord(role Role) *Record {
	return &Record{AccountID: 7, Role: role, IsActive: true}
}

func TestAuthorizeDeniesMissingRecord(t *testing.T) {
	g := New(0)
	dec := g.Authorize(nil, Facts{MFAEnabled: true}, ActionView, Options{})
	require.False(t, dec.Allowed)
	assert.Equal(t, "not admin", dec.Reason)
}

func TestAuthorizeDeniesInactiveBeforeAnythingElse(t *testing.T) {
	g := New(0)
	rec := activeRecord(RoleAdmin)
	rec.IsActive = false
	// MFA is also missing here; the active check must win.
	dec := g.Authorize(rec, Facts{MFAEnabled: false}, ActionDeleteUser, Options{})
	require.False(t, dec.Allowed)
	assert.Equal(t, "inactive", dec.Reason)
}

func TestAuthorizeRequiredRoleHierarchy(t *testing.T) {
	g := New(0)
	dec := g.Authorize(activeRecord(RoleSupportWriteLimited), Facts{MFAEnabled: true}, ActionView, Options{RequiredRole: RoleAdmin})
	require.False(t, dec.Allowed)
	assert.Contains(t, dec.Reason, "requires role admin")

	dec = g.Authorize(activeRecord(RoleAdmin), Facts{MFAEnabled: true}, ActionView, Options{RequiredRole: RoleSupportWriteLimited})
	assert.True(t, dec.Allowed)
}

func TestAuthorizeDemandsMFAForWriteSensitiveActions(t *testing.T) {
	g := New(0)
	// admin nominally holds delete_user; MFA check still comes first.
	dec := g.Authorize(activeRecord(RoleAdmin), Facts{MFAEnabled: false}, ActionDeleteUser, Options{})
	require.False(t, dec.Allowed)
	assert.Equal(t, "MFA required", dec.Reason)

	dec = g.Authorize(activeRecord(RoleAdmin), Facts{MFAEnabled: false}, ActionDeleteUser, Options{AllowPendingMFA: true})
	assert.NotEqual(t, "MFA required", dec.Reason)
}

func TestAuthorizeSkipsMFAForPureReads(t *testing.T) {
	g := New(0)
	dec := g.Authorize(activeRecord(RoleSupportReadonly), Facts{MFAEnabled: false}, ActionView, Options{})
	assert.True(t, dec.Allowed)
}

func TestAuthorizeCredentialFreshness(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	g := New(0).WithClock(fixedClock(now))

	stale := now.Add(-181 * 24 * time.Hour)
	fresh := now.Add(-30 * 24 * time.Hour)

	rec := activeRecord(RoleAdmin)
	rec.LastCredentialChangeAt = &stale
	dec := g.Authorize(rec, Facts{MFAEnabled: true}, ActionDeleteUser, Options{})
	require.False(t, dec.Allowed)
	assert.Equal(t, "credential rotation required", dec.Reason)

	dec = g.Authorize(rec, Facts{MFAEnabled: true}, ActionDeleteUser, Options{AllowExpiredCredential: true})
	assert.True(t, dec.Allowed)

	rec.LastCredentialChangeAt = &fresh
	dec = g.Authorize(rec, Facts{MFAEnabled: true}, ActionDeleteUser, Options{})
	assert.True(t, dec.Allowed)

	// No prior change timestamp is never denied on freshness grounds.
	rec.LastCredentialChangeAt = nil
	dec = g.Authorize(rec, Facts{MFAEnabled: true}, ActionDeleteUser, Options{})
	assert.True(t, dec.Allowed)
}

func TestAuthorizePermissionSetCheck(t *testing.T) {
	g := New(0)
	dec := g.Authorize(activeRecord(RoleSupportReadonly), Facts{MFAEnabled: true}, ActionDeleteUser, Options{})
	require.False(t, dec.Allowed)
	assert.Equal(t, "role support_readonly cannot delete_user", dec.Reason)
}

func TestAuthorizeAllowsPermittedAction(t *testing.T) {
	g := New(0)
	cases := []struct {
		role   Role
		action Action
	}{
		{RoleSupportReadonly, ActionView},
		{RoleSupportWriteLimited, ActionEditProfile},
		{RoleSupportWriteLimited, ActionDisableUploads},
		{RoleAdmin, ActionDeleteUser},
		{RoleAdmin, ActionExportData},
		{RoleAdmin, ActionManageRoles},
	}
	for _, tc := range cases {
		dec := g.Authorize(activeRecord(tc.role), Facts{MFAEnabled: true}, tc.action, Options{})
		assert.True(t, dec.Allowed, "role %s action %s", tc.role, tc.action)
		assert.Empty(t, dec.Reason)
	}
}
