package roles

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Repository provides PostgreSQL backed persistence for role records.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetRole fetches the role record for an account. shared.ErrNotFound
// means the account is not an admin; any other error is infrastructure.
func (r *Repository) GetRole(ctx context.Context, accountID int64) (Record, error) {
	const query = `SELECT account_id, role, is_active, last_credential_change_at, created_at, updated_at
		FROM admin_roles WHERE account_id = $1`
	var rec Record
	var role string
	err := r.pool.QueryRow(ctx, query, accountID).Scan(
		&rec.AccountID, &role, &rec.IsActive, &rec.LastCredentialChangeAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, shared.ErrNotFound
		}
		return Record{}, err
	}
	rec.Role = guard.Role(role)
	return rec, nil
}

// List returns all role records ordered by account ID.
func (r *Repository) List(ctx context.Context) ([]Record, error) {
	const query = `SELECT account_id, role, is_active, last_credential_change_at, created_at, updated_at
		FROM admin_roles ORDER BY account_id`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var role string
		if err := rows.Scan(&rec.AccountID, &role, &rec.IsActive, &rec.LastCredentialChangeAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Role = guard.Role(role)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Upsert assigns a role to an account, activating the record.
func (r *Repository) Upsert(ctx context.Context, accountID int64, role guard.Role) (Record, error) {
	const query = `INSERT INTO admin_roles (account_id, role, is_active, created_at, updated_at)
		VALUES ($1, $2, TRUE, NOW(), NOW())
		ON CONFLICT (account_id) DO UPDATE SET role = EXCLUDED.role, is_active = TRUE, updated_at = NOW()
		RETURNING account_id, role, is_active, last_credential_change_at, created_at, updated_at`
	var rec Record
	var stored string
	err := r.pool.QueryRow(ctx, query, accountID, string(role)).Scan(
		&rec.AccountID, &stored, &rec.IsActive, &rec.LastCredentialChangeAt, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return Record{}, err
	}
	rec.Role = guard.Role(stored)
	return rec, nil
}

// SetActive flips the active flag. Returns shared.ErrNotFound when no
// record exists for the account.
func (r *Repository) SetActive(ctx context.Context, accountID int64, active bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE admin_roles SET is_active = $2, updated_at = NOW() WHERE account_id = $1`,
		accountID, active,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// ListStaleCredentials returns active records whose credential change is
// older than the cutoff. Records without a timestamp are skipped; they
// belong to non-password identity methods.
func (r *Repository) ListStaleCredentials(ctx context.Context, cutoff time.Time) ([]Record, error) {
	const query = `SELECT account_id, role, is_active, last_credential_change_at, created_at, updated_at
		FROM admin_roles
		WHERE is_active AND last_credential_change_at IS NOT NULL AND last_credential_change_at < $1
		ORDER BY last_credential_change_at`
	rows, err := r.pool.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var role string
		if err := rows.Scan(&rec.AccountID, &role, &rec.IsActive, &rec.LastCredentialChangeAt, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		rec.Role = guard.Role(role)
		records = append(records, rec)
	}
	return records, rows.Err()
}
