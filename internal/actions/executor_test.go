package actions

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/accounts"
	"github.com/gatehouse-io/gatehouse/internal/audit"
	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/identity"
	"github.com/gatehouse-io/gatehouse/internal/roles"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

type fakeResolver struct {
	principal identity.Principal
	err       error
}

func (f *fakeResolver) Resolve(ctx context.Context, sess *shared.Session) (identity.Principal, error) {
	return f.principal, f.err
}

type fakeRoleSource struct {
	record *roles.Record
	err    error
}

func (f *fakeRoleSource) GetRole(ctx context.Context, accountID int64) (*roles.Record, error) {
	return f.record, f.err
}

type fakeRoleAdmin struct {
	assigned map[int64]guard.Role
	revoked  []int64
	err      error
}

func (f *fakeRoleAdmin) Assign(ctx context.Context, accountID int64, role guard.Role) (roles.Record, error) {
	if f.err != nil {
		return roles.Record{}, f.err
	}
	if f.assigned == nil {
		f.assigned = make(map[int64]guard.Role)
	}
	f.assigned[accountID] = role
	return roles.Record{AccountID: accountID, Role: role, IsActive: true}, nil
}

func (f *fakeRoleAdmin) Deactivate(ctx context.Context, accountID int64) error {
	if f.err != nil {
		return f.err
	}
	f.revoked = append(f.revoked, accountID)
	return nil
}

func (f *fakeRoleAdmin) List(ctx context.Context) ([]roles.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([]roles.Record, 0, len(f.assigned))
	for id, role := range f.assigned {
		out = append(out, roles.Record{AccountID: id, Role: role, IsActive: true})
	}
	return out, nil
}

type fakeStore struct {
	accounts    map[int64]accounts.Account
	deleted     []int64
	toggles     map[int64]bool
	deleteErr   error
	toggleErr   error
	snapshotErr error
}

func (f *fakeStore) FindByID(ctx context.Context, id int64) (accounts.Account, error) {
	a, ok := f.accounts[id]
	if !ok {
		return accounts.Account{}, shared.ErrNotFound
	}
	return a, nil
}

func (f *fakeStore) List(ctx context.Context) ([]accounts.Account, error) {
	var out []accounts.Account
	for _, a := range f.accounts {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeStore) DeleteCascade(ctx context.Context, id int64) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	delete(f.accounts, id)
	return nil
}

func (f *fakeStore) SetUploadsDisabled(ctx context.Context, id int64, disabled bool) error {
	if f.toggleErr != nil {
		return f.toggleErr
	}
	if f.toggles == nil {
		f.toggles = make(map[int64]bool)
	}
	f.toggles[id] = disabled
	return nil
}

func (f *fakeStore) Snapshot(ctx context.Context, id int64) (accounts.Snapshot, error) {
	if f.snapshotErr != nil {
		return accounts.Snapshot{}, f.snapshotErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return accounts.Snapshot{}, shared.ErrNotFound
	}
	return accounts.Snapshot{Account: a, UploadIDs: []int64{100, 101}}, nil
}

type fakeRecorder struct {
	entries []audit.Entry
	err     error
}

func (f *fakeRecorder) Record(ctx context.Context, entry audit.Entry) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	f.entries = append(f.entries, entry)
	return uuid.New(), nil
}

type fixture struct {
	service  *Service
	store    *fakeStore
	recorder *fakeRecorder
	roleAdm  *fakeRoleAdmin
}

func newFixture(role guard.Role, mfa bool) *fixture {
	resolver := &fakeResolver{principal: identity.Principal{
		Account:    accounts.Account{ID: 1, Email: "ops@example.com"},
		MFAEnabled: mfa,
	}}
	var record *roles.Record
	if role != "" {
		record = &roles.Record{AccountID: 1, Role: role, IsActive: true}
	}
	store := &fakeStore{accounts: map[int64]accounts.Account{
		42: {ID: 42, Email: "alice@example.com", FullName: "Alice Smith", CreatedAt: time.Now()},
	}}
	recorder := &fakeRecorder{}
	roleAdm := &fakeRoleAdmin{}
	svc := NewService(resolver, &fakeRoleSource{record: record}, roleAdm, store, guard.New(0), recorder, nil, nil)
	return &fixture{service: svc, store: store, recorder: recorder, roleAdm: roleAdm}
}

func TestDeleteUserWritesSingleAuditEntry(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)

	err := fx.service.DeleteUser(context.Background(), &shared.Session{}, 42, RequestMeta{IPHash: "abc"})
	require.NoError(t, err)

	assert.Equal(t, []int64{42}, fx.store.deleted)
	require.Len(t, fx.recorder.entries, 1)
	entry := fx.recorder.entries[0]
	assert.Equal(t, "USER_DELETE", entry.Action)
	assert.Equal(t, "admin", entry.ActorRole)
	assert.Equal(t, "ali***@***", entry.Metadata["target_email"])
	assert.Equal(t, "abc", entry.IPHash)
	require.NotNil(t, entry.TargetID)
	assert.Equal(t, int64(42), *entry.TargetID)
}

func TestDeleteUserFailureAuditsFailedAction(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)
	fx.store.deleteErr = errors.New("fk constraint")

	err := fx.service.DeleteUser(context.Background(), &shared.Session{}, 42, RequestMeta{})
	require.Error(t, err)

	require.Len(t, fx.recorder.entries, 1)
	entry := fx.recorder.entries[0]
	assert.Equal(t, "USER_DELETE_FAILED", entry.Action)
	assert.Equal(t, "fk constraint", entry.Metadata["error"])
}

func TestDeleteUserAuditFailureDoesNotMaskCompletion(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)
	fx.recorder.err = shared.ErrAuditUnavailable

	// Deletion is irreversible; the completed delete is still success.
	err := fx.service.DeleteUser(context.Background(), &shared.Session{}, 42, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, []int64{42}, fx.store.deleted)
}

func TestDeleteUserUnknownTargetSkipsSideEffectAndAudit(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)

	err := fx.service.DeleteUser(context.Background(), &shared.Session{}, 99, RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, fx.store.deleted)
	assert.Empty(t, fx.recorder.entries)
}

func TestDeniedActionProducesNoSideEffectAndNoAuditEntry(t *testing.T) {
	fx := newFixture(guard.RoleSupportReadonly, true)

	err := fx.service.DeleteUser(context.Background(), &shared.Session{}, 42, RequestMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Contains(t, err.Error(), "role support_readonly cannot delete_user")
	assert.Empty(t, fx.store.deleted)
	assert.Empty(t, fx.recorder.entries)
}

func TestMissingMFADeniesEvenForAdmin(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, false)

	err := fx.service.DeleteUser(context.Background(), &shared.Session{}, 42, RequestMeta{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Contains(t, err.Error(), "MFA required")
}

func TestToggleUploadsDisableAuditEntry(t *testing.T) {
	fx := newFixture(guard.RoleSupportWriteLimited, true)

	err := fx.service.ToggleUploads(context.Background(), &shared.Session{}, 42, true, RequestMeta{})
	require.NoError(t, err)

	assert.True(t, fx.store.toggles[42])
	require.Len(t, fx.recorder.entries, 1)
	entry := fx.recorder.entries[0]
	assert.Equal(t, "UPLOADS_DISABLED", entry.Action)
	assert.Equal(t, "disabled", entry.Metadata["new_state"])
}

func TestToggleUploadsEnableUsesEnableAction(t *testing.T) {
	fx := newFixture(guard.RoleSupportWriteLimited, true)

	err := fx.service.ToggleUploads(context.Background(), &shared.Session{}, 42, false, RequestMeta{})
	require.NoError(t, err)
	require.Len(t, fx.recorder.entries, 1)
	assert.Equal(t, "UPLOADS_ENABLED", fx.recorder.entries[0].Action)
	assert.Equal(t, "enabled", fx.recorder.entries[0].Metadata["new_state"])
}

func TestToggleUploadsAuditFailureMasksSuccess(t *testing.T) {
	fx := newFixture(guard.RoleSupportWriteLimited, true)
	fx.recorder.err = shared.ErrAuditUnavailable

	// Audit-before-confirm: the flip happened but cannot be confirmed.
	err := fx.service.ToggleUploads(context.Background(), &shared.Session{}, 42, true, RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrAuditUnavailable)
}

func TestToggleUploadsSideEffectErrorKeptOverAuditError(t *testing.T) {
	fx := newFixture(guard.RoleSupportWriteLimited, true)
	sideEffect := errors.New("store timeout")
	fx.store.toggleErr = sideEffect
	fx.recorder.err = shared.ErrAuditUnavailable

	err := fx.service.ToggleUploads(context.Background(), &shared.Session{}, 42, true, RequestMeta{})
	assert.ErrorIs(t, err, sideEffect)
}

func TestExportDataRedactsFields(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)

	export, err := fx.service.ExportData(context.Background(), &shared.Session{}, 42, RequestMeta{})
	require.NoError(t, err)

	assert.Equal(t, "ali***@***", export.Email)
	assert.Equal(t, "Al***", export.FullName)
	assert.Equal(t, 2, export.UploadCount)

	require.Len(t, fx.recorder.entries, 1)
	entry := fx.recorder.entries[0]
	assert.Equal(t, "DATA_EXPORT", entry.Action)
	assert.Equal(t, "account_snapshot", entry.Metadata["export_type"])
	// Metadata must record the export type, not the exported content.
	assert.NotContains(t, entry.Metadata, "email")
}

func TestAssignRoleAuditsAndMutates(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)

	err := fx.service.AssignRole(context.Background(), &shared.Session{}, 42, guard.RoleSupportWriteLimited, RequestMeta{})
	require.NoError(t, err)
	assert.Equal(t, guard.RoleSupportWriteLimited, fx.roleAdm.assigned[42])
	require.Len(t, fx.recorder.entries, 1)
	assert.Equal(t, "ROLE_ASSIGN", fx.recorder.entries[0].Action)
	assert.Equal(t, "support_write_limited", fx.recorder.entries[0].Metadata["role"])
}

func TestRevokeRoleUnknownTargetSkipsSideEffectAndAudit(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)

	err := fx.service.RevokeRole(context.Background(), &shared.Session{}, 99, RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Empty(t, fx.roleAdm.revoked)
	assert.Empty(t, fx.recorder.entries)
}

func TestListRolesRequiresAdminRole(t *testing.T) {
	fx := newFixture(guard.RoleSupportWriteLimited, true)

	_, err := fx.service.ListRoles(context.Background(), &shared.Session{})
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	assert.Contains(t, err.Error(), "requires role admin or above")
}

func TestListRolesReturnsRoster(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, true)
	fx.roleAdm.assigned = map[int64]guard.Role{7: guard.RoleSupportReadonly}

	list, err := fx.service.ListRoles(context.Background(), &shared.Session{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(7), list[0].AccountID)
	assert.Equal(t, "support_readonly", list[0].Role)
	assert.True(t, list[0].IsActive)
	assert.Empty(t, fx.recorder.entries)
}

func TestStatusReachableWithPendingMFA(t *testing.T) {
	fx := newFixture(guard.RoleAdmin, false)

	status, err := fx.service.Status(context.Background(), &shared.Session{}, guard.DefaultCredentialMaxAge)
	require.NoError(t, err)
	assert.Equal(t, "admin", status.Role)
	assert.False(t, status.MFAEnabled)
	assert.True(t, status.CredentialAgeOK)
}

func TestUnauthenticatedCaller(t *testing.T) {
	store := &fakeStore{}
	resolver := &fakeResolver{err: shared.ErrUnauthenticated}
	svc := NewService(resolver, &fakeRoleSource{}, &fakeRoleAdmin{}, store, guard.New(0), &fakeRecorder{}, nil, nil)

	err := svc.DeleteUser(context.Background(), nil, 42, RequestMeta{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestNonAdminDeniedAsNotAdmin(t *testing.T) {
	fx := newFixture("", true)

	err := fx.service.DeleteUser(context.Background(), &shared.Session{}, 42, RequestMeta{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not admin")
}
