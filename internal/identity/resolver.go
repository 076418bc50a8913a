// Package identity resolves the authenticated caller for a request.
package identity

import (
	"context"
	"errors"
	"strconv"

	"github.com/gatehouse-io/gatehouse/internal/accounts"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Principal is the resolved actor for one request.
type Principal struct {
	Account    accounts.Account
	MFAEnabled bool
}

// AccountStore is the slice of the account repository the resolver needs.
type AccountStore interface {
	FindByID(ctx context.Context, id int64) (accounts.Account, error)
}

// Resolver turns a session into a Principal.
type Resolver struct {
	store AccountStore
}

// NewResolver constructs a Resolver.
func NewResolver(store AccountStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the principal behind the session, or
// shared.ErrUnauthenticated when the session carries no valid user. MFA
// enrollment is read from the account row so the flag is always current.
func (r *Resolver) Resolve(ctx context.Context, sess *shared.Session) (Principal, error) {
	if sess == nil || sess.User() == "" {
		return Principal{}, shared.ErrUnauthenticated
	}
	id, err := strconv.ParseInt(sess.User(), 10, 64)
	if err != nil {
		return Principal{}, shared.ErrUnauthenticated
	}
	account, err := r.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// Session outlived the account; treat as unauthenticated.
			return Principal{}, shared.ErrUnauthenticated
		}
		return Principal{}, err
	}
	return Principal{Account: account, MFAEnabled: account.HasMFA}, nil
}
