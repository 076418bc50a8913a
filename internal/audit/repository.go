package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed persistence for the audit trail.
// The insert path is append-only; no update or delete statements exist.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert durably persists one entry before returning.
func (r *Repository) Insert(ctx context.Context, entry Entry) error {
	metaJSON, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("audit: marshal metadata: %w", err)
	}
	_, err = r.pool.Exec(ctx,
		`INSERT INTO audit_log (id, created_at, actor_id, actor_role, action, target_id, metadata, ip_hash, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))`,
		entry.ID, entry.CreatedAt, entry.ActorID, entry.ActorRole, entry.Action,
		entry.TargetID, metaJSON, entry.IPHash, entry.UserAgent,
	)
	return err
}

// Window returns one page of entries, newest first, plus one extra row so
// the caller can detect a next page.
func (r *Repository) Window(ctx context.Context, f Filters, offset, limit int) ([]Entry, error) {
	const query = `SELECT id, created_at, actor_id, actor_role, action, target_id, metadata, COALESCE(ip_hash, ''), COALESCE(user_agent, '')
		FROM audit_log
		WHERE ($1::timestamptz IS NULL OR created_at >= $1)
		  AND ($2::timestamptz IS NULL OR created_at <= $2)
		  AND ($3::bigint IS NULL OR actor_id = $3)
		  AND ($4::text IS NULL OR action = $4)
		ORDER BY created_at DESC
		OFFSET $5 LIMIT $6`
	rows, err := r.pool.Query(ctx, query,
		nullTime(f.From), nullTime(f.To), f.ActorID, nullString(f.Action), offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var metaJSON []byte
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.ActorID, &e.ActorRole, &e.Action, &e.TargetID, &metaJSON, &e.IPHash, &e.UserAgent); err != nil {
			return nil, err
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("audit: unmarshal metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
