package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// RepositoryPort defines data access methods for role records.
type RepositoryPort interface {
	GetRole(ctx context.Context, accountID int64) (Record, error)
	List(ctx context.Context) ([]Record, error)
	Upsert(ctx context.Context, accountID int64, role guard.Role) (Record, error)
	SetActive(ctx context.Context, accountID int64, active bool) error
}

// Service is the role store. Lookups are always fresh reads; a
// deactivated admin must be blocked on the very next request, so no
// caching layer sits in front of the repository.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// GetRole returns the role record for an account, or nil when the
// account holds no admin role. Infrastructure failures are returned as
// errors so callers can tell "not an admin" apart from "store down".
func (s *Service) GetRole(ctx context.Context, accountID int64) (*Record, error) {
	rec, err := s.repo.GetRole(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("roles: get role: %w", err)
	}
	return &rec, nil
}

// List returns all role records.
func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.repo.List(ctx)
}

// Assign grants a role to an account.
func (s *Service) Assign(ctx context.Context, accountID int64, role guard.Role) (Record, error) {
	if !role.Valid() {
		return Record{}, fmt.Errorf("roles: unknown role %q", role)
	}
	return s.repo.Upsert(ctx, accountID, role)
}

// Deactivate disables an account's admin role without deleting history.
func (s *Service) Deactivate(ctx context.Context, accountID int64) error {
	return s.repo.SetActive(ctx, accountID, false)
}
