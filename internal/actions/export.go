package actions

import (
	"context"
	"strings"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

const (
	emailMask = "***@***"
	nameMask  = "***"
)

// RedactEmail masks an email address for export and audit metadata:
// the first three characters of the local part survive, everything else
// including the domain is replaced ("alice@example.com" -> "ali***@***").
func RedactEmail(email string) string {
	local := email
	if at := strings.IndexByte(email, '@'); at >= 0 {
		local = email[:at]
	}
	if len(local) > 3 {
		local = local[:3]
	}
	return local + emailMask
}

// RedactName masks a full name, keeping the first two characters
// ("Alice Smith" -> "Al***").
func RedactName(name string) string {
	if len(name) > 2 {
		name = name[:2]
	}
	return name + nameMask
}

// ExportData assembles the redacted snapshot of the target account.
// Export is a read, but it moves user data out of the system, so it is
// gated like a write and audited with audit-before-confirm ordering. The
// audit metadata records the export type, never the exported content.
func (s *Service) ExportData(ctx context.Context, sess *shared.Session, targetID int64, req RequestMeta) (Export, error) {
	actor, err := s.Authorize(ctx, sess, guard.ActionExportData, guard.Options{})
	if err != nil {
		return Export{}, err
	}

	if _, err := s.findTarget(ctx, targetID); err != nil {
		return Export{}, err
	}

	meta := map[string]any{"export_type": "account_snapshot"}

	snap, exportErr := s.store.Snapshot(ctx, targetID)
	if exportErr != nil {
		meta["error"] = exportErr.Error()
	}

	auditErr := s.record(ctx, actor, ActionDataExport, exportErr != nil, &targetID, meta, req)
	if exportErr != nil {
		return Export{}, exportErr
	}
	if auditErr != nil {
		return Export{}, auditErr
	}

	return Export{
		AccountID:       snap.Account.ID,
		Email:           RedactEmail(snap.Account.Email),
		FullName:        RedactName(snap.Account.FullName),
		UploadsDisabled: snap.Account.UploadsDisabled,
		UploadCount:     len(snap.UploadIDs),
		CreatedAt:       snap.Account.CreatedAt,
	}, nil
}
