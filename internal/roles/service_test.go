package roles

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

type stubRepo struct {
	records map[int64]Record
	err     error
}

func (r *stubRepo) GetRole(ctx context.Context, accountID int64) (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}
	rec, ok := r.records[accountID]
	if !ok {
		return Record{}, shared.ErrNotFound
	}
	return rec, nil
}

func (r *stubRepo) List(ctx context.Context) ([]Record, error) {
	return nil, r.err
}

func (r *stubRepo) Upsert(ctx context.Context, accountID int64, role guard.Role) (Record, error) {
	if r.err != nil {
		return Record{}, r.err
	}
	rec := Record{AccountID: accountID, Role: role, IsActive: true}
	if r.records == nil {
		r.records = make(map[int64]Record)
	}
	r.records[accountID] = rec
	return rec, nil
}

func (r *stubRepo) SetActive(ctx context.Context, accountID int64, active bool) error {
	if _, ok := r.records[accountID]; !ok {
		return shared.ErrNotFound
	}
	rec := r.records[accountID]
	rec.IsActive = active
	r.records[accountID] = rec
	return nil
}

func TestGetRoleDistinguishesMissingFromFailure(t *testing.T) {
	svc := NewService(&stubRepo{records: map[int64]Record{
		1: {AccountID: 1, Role: guard.RoleAdmin, IsActive: true},
	}})

	rec, err := svc.GetRole(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, guard.RoleAdmin, rec.Role)

	// No record is a legitimate "not an admin" outcome, not an error.
	rec, err = svc.GetRole(context.Background(), 99)
	require.NoError(t, err)
	assert.Nil(t, rec)

	infra := errors.New("connection refused")
	svc = NewService(&stubRepo{err: infra})
	_, err = svc.GetRole(context.Background(), 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, infra)
}

func TestAssignRejectsUnknownRole(t *testing.T) {
	svc := NewService(&stubRepo{})
	_, err := svc.Assign(context.Background(), 1, guard.Role("root"))
	require.Error(t, err)

	rec, err := svc.Assign(context.Background(), 1, guard.RoleSupportWriteLimited)
	require.NoError(t, err)
	assert.True(t, rec.IsActive)
}

func TestDeactivate(t *testing.T) {
	repo := &stubRepo{records: map[int64]Record{
		4: {AccountID: 4, Role: guard.RoleAdmin, IsActive: true},
	}}
	svc := NewService(repo)
	require.NoError(t, svc.Deactivate(context.Background(), 4))
	assert.False(t, repo.records[4].IsActive)

	assert.ErrorIs(t, svc.Deactivate(context.Background(), 5), shared.ErrNotFound)
}
