package jobs

import (
	"context"
	"log/slog"

	"github.com/gatehouse-io/gatehouse/internal/audit"
)

// AuditAlerter escalates failed audit writes onto the job queue so the
// loss is handled outside the request path.
type AuditAlerter struct {
	client *Client
	logger *slog.Logger
}

// NewAuditAlerter constructs an alerter backed by the Asynq client.
func NewAuditAlerter(client *Client, logger *slog.Logger) *AuditAlerter {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditAlerter{client: client, logger: logger}
}

// AuditWriteFailed enqueues an alert task. Enqueue failures are logged;
// there is nothing further to fall back to at this point.
func (a *AuditAlerter) AuditWriteFailed(ctx context.Context, entry audit.Entry, cause error) {
	if a == nil || a.client == nil {
		return
	}
	payload := AuditAlertPayload{
		Action:     entry.Action,
		OccurredAt: entry.CreatedAt,
		Error:      cause.Error(),
	}
	if _, err := a.client.EnqueueAuditAlert(ctx, payload); err != nil {
		a.logger.Error("failed to enqueue audit alert",
			slog.String("action", entry.Action),
			slog.Any("error", err),
		)
	}
}
