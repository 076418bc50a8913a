package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// RepositoryPort defines credential lookups.
type RepositoryPort interface {
	FindByEmail(ctx context.Context, email string) (Credential, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a new Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Every failure mode
// collapses into ErrInvalidCredentials so the response does not reveal
// whether the account exists.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Credential, error) {
	cred, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return Credential{}, shared.ErrInvalidCredentials
	}
	if cred.PasswordHash == "" {
		return Credential{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return Credential{}, shared.ErrInvalidCredentials
	}
	return cred, nil
}
