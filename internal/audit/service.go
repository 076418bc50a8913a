package audit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// RepositoryPort defines the persistence contract for the audit trail.
type RepositoryPort interface {
	Insert(ctx context.Context, entry Entry) error
	Window(ctx context.Context, f Filters, offset, limit int) ([]Entry, error)
}

// Alerter escalates a durable audit failure to the operational channel.
// A missing audit entry for a completed privileged action is a
// compliance gap, so the gap is surfaced, never hidden.
type Alerter interface {
	AuditWriteFailed(ctx context.Context, entry Entry, cause error)
}

// FailureObserver counts audit write failures for monitoring.
type FailureObserver interface {
	ObserveAuditFailure(action string)
}

// Service coordinates audit writes and timeline reads.
type Service struct {
	repo     RepositoryPort
	logger   *slog.Logger
	alerter  Alerter
	observer FailureObserver
	now      func() time.Time
}

// NewService constructs the audit service. alerter and observer may be
// nil; escalation then degrades to high-severity logging only.
func NewService(repo RepositoryPort, logger *slog.Logger, alerter Alerter, observer FailureObserver) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:     repo,
		logger:   logger,
		alerter:  alerter,
		observer: observer,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. Intended for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record durably appends one entry. The write is retried once; after
// that the failure is escalated and shared.ErrAuditUnavailable is
// returned so the caller can decide whether to mask the action's
// visible success.
func (s *Service) Record(ctx context.Context, entry Entry) (uuid.UUID, error) {
	if entry.Action == "" {
		return uuid.Nil, errors.New("audit: entry requires an action")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = s.now().UTC()
	}

	err := s.repo.Insert(ctx, entry)
	if err != nil {
		// One immediate retry; beyond that the gap is surfaced.
		err = s.repo.Insert(ctx, entry)
	}
	if err != nil {
		s.logger.Error("audit write failed",
			slog.String("action", entry.Action),
			slog.String("entry_id", entry.ID.String()),
			slog.Any("error", err),
		)
		if s.observer != nil {
			s.observer.ObserveAuditFailure(entry.Action)
		}
		if s.alerter != nil {
			s.alerter.AuditWriteFailed(ctx, entry, err)
		}
		return uuid.Nil, fmt.Errorf("%w: %s", shared.ErrAuditUnavailable, entry.Action)
	}
	return entry.ID, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Timeline returns one page of the trail, newest first.
func (s *Service) Timeline(ctx context.Context, f Filters) (Result, error) {
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * pageSize

	entries, err := s.repo.Window(ctx, f, offset, pageSize+1)
	if err != nil {
		return Result{}, err
	}
	hasNext := len(entries) > pageSize
	if hasNext {
		entries = entries[:pageSize]
	}
	paging := PagingInfo{Page: page, PageSize: pageSize, HasNext: hasNext}
	if page > 1 {
		paging.PrevPage = page - 1
	}
	if hasNext {
		paging.NextPage = page + 1
	}
	return Result{Entries: entries, Paging: paging}, nil
}

// Export returns the filtered trail without paging, for CSV export.
func (s *Service) Export(ctx context.Context, f Filters) ([]Entry, error) {
	const batch = 500
	var all []Entry
	for offset := 0; ; offset += batch {
		entries, err := s.repo.Window(ctx, f, offset, batch)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
		if len(entries) < batch {
			return all, nil
		}
	}
}
