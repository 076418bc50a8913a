package accounts

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-io/gatehouse/internal/platform/db"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, email, full_name, has_mfa, uploads_disabled, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var a Account
	err := row.Scan(&a.ID, &a.Email, &a.FullName, &a.HasMFA, &a.UploadsDisabled, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, shared.ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}

// FindByID returns one account.
func (r *Repository) FindByID(ctx context.Context, id int64) (Account, error) {
	return scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
}

// List returns all accounts ordered by creation time.
func (r *Repository) List(ctx context.Context) ([]Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Email, &a.FullName, &a.HasMFA, &a.UploadsDisabled, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteCascade removes the account and its dependent rows in one
// transaction. Audit entries referencing the account are left intact;
// the trail outlives its subjects.
func (r *Repository) DeleteCascade(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM uploads WHERE account_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM admin_roles WHERE account_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// SetUploadsDisabled flips the uploads flag. Concurrent toggles race with
// last-write-wins semantics; the store serialises the writes.
func (r *Repository) SetUploadsDisabled(ctx context.Context, id int64, disabled bool) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE accounts SET uploads_disabled = $2, updated_at = NOW() WHERE id = $1`,
		id, disabled,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Snapshot assembles the read-only export view for an account.
func (r *Repository) Snapshot(ctx context.Context, id int64) (Snapshot, error) {
	account, err := r.FindByID(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT id FROM uploads WHERE account_id = $1 ORDER BY id`, id)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()

	snap := Snapshot{Account: account}
	for rows.Next() {
		var uploadID int64
		if err := rows.Scan(&uploadID); err != nil {
			return Snapshot{}, err
		}
		snap.UploadIDs = append(snap.UploadIDs, uploadID)
	}
	return snap, rows.Err()
}
