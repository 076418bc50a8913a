package actions

import (
	"context"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// ToggleUploads flips the uploads flag on the target account. The flip
// is reversible, so audit-before-confirm applies: a completed flip whose
// audit entry cannot be written durably is reported to the caller as a
// failure rather than a silent success.
func (s *Service) ToggleUploads(ctx context.Context, sess *shared.Session, targetID int64, disable bool, req RequestMeta) error {
	actor, err := s.Authorize(ctx, sess, guard.ActionDisableUploads, guard.Options{})
	if err != nil {
		return err
	}

	if _, err := s.findTarget(ctx, targetID); err != nil {
		return err
	}

	action := ActionUploadsEnable
	newState := "enabled"
	if disable {
		action = ActionUploadsDisable
		newState = "disabled"
	}
	meta := map[string]any{"new_state": newState}

	toggleErr := s.store.SetUploadsDisabled(ctx, targetID, disable)
	if toggleErr != nil {
		meta["error"] = toggleErr.Error()
	}

	auditErr := s.record(ctx, actor, action, toggleErr != nil, &targetID, meta, req)
	if toggleErr != nil {
		// The audit failure, if any, was escalated separately; it must
		// not mask the original side-effect error.
		return toggleErr
	}
	return auditErr
}
