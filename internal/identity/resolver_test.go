package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatehouse-io/gatehouse/internal/accounts"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

type stubStore struct {
	accounts map[int64]accounts.Account
	err      error
}

func (s *stubStore) FindByID(ctx context.Context, id int64) (accounts.Account, error) {
	if s.err != nil {
		return accounts.Account{}, s.err
	}
	a, ok := s.accounts[id]
	if !ok {
		return accounts.Account{}, shared.ErrNotFound
	}
	return a, nil
}

func sessionForUser(id string) *shared.Session {
	sess := &shared.Session{}
	sess.SetUser(id)
	return sess
}

func TestResolveRequiresSessionUser(t *testing.T) {
	r := NewResolver(&stubStore{})

	_, err := r.Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = r.Resolve(context.Background(), &shared.Session{})
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	_, err = r.Resolve(context.Background(), sessionForUser("not-a-number"))
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestResolveLoadsAccountAndMFA(t *testing.T) {
	r := NewResolver(&stubStore{accounts: map[int64]accounts.Account{
		12: {ID: 12, Email: "ops@example.com", HasMFA: true},
	}})

	principal, err := r.Resolve(context.Background(), sessionForUser("12"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), principal.Account.ID)
	assert.True(t, principal.MFAEnabled)
}

func TestResolveMissingAccountIsUnauthenticated(t *testing.T) {
	r := NewResolver(&stubStore{})
	_, err := r.Resolve(context.Background(), sessionForUser("44"))
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}

func TestResolvePropagatesInfrastructureErrors(t *testing.T) {
	infra := errors.New("timeout")
	r := NewResolver(&stubStore{err: infra})
	_, err := r.Resolve(context.Background(), sessionForUser("44"))
	assert.ErrorIs(t, err, infra)
}
