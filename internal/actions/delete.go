package actions

import (
	"context"
	"log/slog"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// DeleteUser removes the target account and its dependent rows. Deletion
// is irreversible, so the audit entry is written after the side effect:
// the primary operation cannot be gated behind audit durability. When
// the audit write fails anyway, the gap is escalated but the completed
// deletion is still reported as success.
func (s *Service) DeleteUser(ctx context.Context, sess *shared.Session, targetID int64, req RequestMeta) error {
	actor, err := s.Authorize(ctx, sess, guard.ActionDeleteUser, guard.Options{})
	if err != nil {
		return err
	}

	target, err := s.findTarget(ctx, targetID)
	if err != nil {
		return err
	}

	meta := map[string]any{
		"target_email": RedactEmail(target.Email),
	}

	deleteErr := s.store.DeleteCascade(ctx, targetID)
	if deleteErr != nil {
		meta["error"] = deleteErr.Error()
	}

	if auditErr := s.record(ctx, actor, ActionUserDelete, deleteErr != nil, &targetID, meta, req); auditErr != nil {
		// Already escalated by the audit service; the deletion stands.
		s.logger.Error("user deleted without durable audit entry",
			slog.Int64("target_id", targetID),
		)
	}
	return deleteErr
}
