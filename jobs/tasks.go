package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditAlert is enqueued when a durable audit write fails
	// after retry so an operator can investigate.
	TaskTypeAuditAlert = "audit:alert"
	// TaskTypeCredentialSweep periodically flags admins whose password
	// rotation window has lapsed.
	TaskTypeCredentialSweep = "roles:credential_sweep"
)

// AuditAlertPayload carries context about a failed audit write.
type AuditAlertPayload struct {
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
	Error      string    `json:"error"`
}

// NewAuditAlertTask constructs an Asynq task for an audit write failure.
func NewAuditAlertTask(payload AuditAlertPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditAlert, data), nil
}

// NewCredentialSweepTask constructs the sweep task. The payload is empty,
// the handler reads its window from configuration.
func NewCredentialSweepTask() *asynq.Task {
	return asynq.NewTask(TaskTypeCredentialSweep, nil)
}

// HandleAuditAlertTask surfaces a lost audit entry to operators.
func HandleAuditAlertTask(ctx context.Context, t *asynq.Task) error {
	var payload AuditAlertPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	// Placeholder for a pager integration. The structured log line is
	// what on-call alerting currently keys on.
	slog.Default().Error("audit trail write lost",
		slog.String("job", TaskTypeAuditAlert),
		slog.String("action", payload.Action),
		slog.Time("occurred_at", payload.OccurredAt),
		slog.String("error", payload.Error),
	)
	return nil
}
