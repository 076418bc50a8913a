package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Repository loads credentials from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByEmail returns the credential for an email address.
func (r *Repository) FindByEmail(ctx context.Context, email string) (Credential, error) {
	const query = `SELECT id, email, COALESCE(password_hash, '') FROM accounts WHERE email = $1`
	var cred Credential
	err := r.pool.QueryRow(ctx, query, email).Scan(&cred.AccountID, &cred.Email, &cred.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, shared.ErrNotFound
		}
		return Credential{}, err
	}
	return cred, nil
}
