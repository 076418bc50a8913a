package actions

import (
	"context"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// AssignRole grants an admin role to the target account. Role records
// are mutated only through manage_roles-gated actions.
func (s *Service) AssignRole(ctx context.Context, sess *shared.Session, targetID int64, role guard.Role, req RequestMeta) error {
	actor, err := s.Authorize(ctx, sess, guard.ActionManageRoles, guard.Options{})
	if err != nil {
		return err
	}
	if _, err := s.findTarget(ctx, targetID); err != nil {
		return err
	}

	meta := map[string]any{"role": string(role)}
	_, assignErr := s.roleAdm.Assign(ctx, targetID, role)
	if assignErr != nil {
		meta["error"] = assignErr.Error()
	}

	auditErr := s.record(ctx, actor, ActionRoleAssign, assignErr != nil, &targetID, meta, req)
	if assignErr != nil {
		return assignErr
	}
	return auditErr
}

// RevokeRole deactivates the target's admin role.
func (s *Service) RevokeRole(ctx context.Context, sess *shared.Session, targetID int64, req RequestMeta) error {
	actor, err := s.Authorize(ctx, sess, guard.ActionManageRoles, guard.Options{})
	if err != nil {
		return err
	}
	if _, err := s.findTarget(ctx, targetID); err != nil {
		return err
	}

	meta := map[string]any{}
	revokeErr := s.roleAdm.Deactivate(ctx, targetID)
	if revokeErr != nil {
		meta["error"] = revokeErr.Error()
	}

	auditErr := s.record(ctx, actor, ActionRoleRevoke, revokeErr != nil, &targetID, meta, req)
	if revokeErr != nil {
		return revokeErr
	}
	return auditErr
}

// ListRoles returns the admin roster. The roster reveals who holds
// privileged access, so the read requires the admin role even though it
// mutates nothing.
func (s *Service) ListRoles(ctx context.Context, sess *shared.Session) ([]RoleSummary, error) {
	if _, err := s.Authorize(ctx, sess, guard.ActionView, guard.Options{RequiredRole: guard.RoleAdmin}); err != nil {
		return nil, err
	}
	list, err := s.roleAdm.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RoleSummary, 0, len(list))
	for _, rec := range list {
		out = append(out, RoleSummary{
			AccountID:              rec.AccountID,
			Role:                   string(rec.Role),
			IsActive:               rec.IsActive,
			LastCredentialChangeAt: rec.LastCredentialChangeAt,
		})
	}
	return out, nil
}

// ListAccounts is the read behind the user listing, gated by view.
func (s *Service) ListAccounts(ctx context.Context, sess *shared.Session) ([]AccountSummary, error) {
	if _, err := s.Authorize(ctx, sess, guard.ActionView, guard.Options{}); err != nil {
		return nil, err
	}
	list, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]AccountSummary, 0, len(list))
	for _, a := range list {
		out = append(out, AccountSummary{
			ID:              a.ID,
			Email:           a.Email,
			FullName:        a.FullName,
			UploadsDisabled: a.UploadsDisabled,
			CreatedAt:       a.CreatedAt,
		})
	}
	return out, nil
}

// Status reports the caller's own admin standing. It runs with the
// pending-MFA and expired-credential overrides so the setup flows can
// reach it before enrollment completes.
func (s *Service) Status(ctx context.Context, sess *shared.Session, maxCredentialAge time.Duration) (ActorStatus, error) {
	actor, err := s.Authorize(ctx, sess, guard.ActionView, guard.Options{
		AllowPendingMFA:        true,
		AllowExpiredCredential: true,
	})
	if err != nil {
		return ActorStatus{}, err
	}

	status := ActorStatus{
		AccountID:  actor.Principal.Account.ID,
		Email:      actor.Principal.Account.Email,
		MFAEnabled: actor.Principal.MFAEnabled,
	}
	if actor.Role != nil {
		status.Role = string(actor.Role.Role)
		status.RoleActive = actor.Role.IsActive
		status.LastCredential = actor.Role.LastCredentialChangeAt
		status.CredentialAgeOK = actor.Role.LastCredentialChangeAt == nil ||
			time.Since(*actor.Role.LastCredentialChangeAt) <= maxCredentialAge
	}
	return status, nil
}
