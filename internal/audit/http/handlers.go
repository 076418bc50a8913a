// Package audithttp serves the audit timeline and its CSV export.
package audithttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gatehouse-io/gatehouse/internal/actions"
	"github.com/gatehouse-io/gatehouse/internal/audit"
	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

const maxDateRange = 90 * 24 * time.Hour

// TimelineService defines the business contract for timeline data.
type TimelineService interface {
	Timeline(ctx context.Context, f audit.Filters) (audit.Result, error)
	Export(ctx context.Context, f audit.Filters) ([]audit.Entry, error)
}

// Authorizer gates timeline access behind the admin role.
type Authorizer interface {
	Authorize(ctx context.Context, sess *shared.Session, action guard.Action, opts guard.Options) (actions.Actor, error)
}

// Handler serves audit timeline requests.
type Handler struct {
	logger     *slog.Logger
	service    TimelineService
	authorizer Authorizer
	now        func() time.Time
}

// NewHandler builds a new audit handler.
func NewHandler(logger *slog.Logger, service TimelineService, authorizer Authorizer) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		service:    service,
		authorizer: authorizer,
		now:        time.Now,
	}
}

type timelineEntry struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	ActorID   *int64         `json:"actor_id,omitempty"`
	ActorRole string         `json:"actor_role"`
	Action    string         `json:"action"`
	TargetID  *int64         `json:"target_id,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type timelineResponse struct {
	Entries []timelineEntry `json:"entries"`
	Page    int             `json:"page"`
	HasNext bool            `json:"has_next"`
}

func (h *Handler) handleTimeline(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	result, err := h.service.Timeline(r.Context(), filters)
	if err != nil {
		h.logger.Error("load audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	resp := timelineResponse{
		Entries: make([]timelineEntry, 0, len(result.Entries)),
		Page:    result.Paging.Page,
		HasNext: result.Paging.HasNext,
	}
	for _, e := range result.Entries {
		resp.Entries = append(resp.Entries, timelineEntry{
			ID:        e.ID.String(),
			CreatedAt: e.CreatedAt,
			ActorID:   e.ActorID,
			ActorRole: e.ActorRole,
			Action:    e.Action,
			TargetID:  e.TargetID,
			Metadata:  e.Metadata,
		})
	}
	httpx.JSON(w, http.StatusOK, resp)
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	if err := h.authorize(r); err != nil {
		httpx.RespondError(w, err)
		return
	}

	filters, err := h.parseFilters(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	entries, err := h.service.Export(r.Context(), filters)
	if err != nil {
		h.logger.Error("export audit timeline", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	csvBytes, err := audit.WriteCSV(entries)
	if err != nil {
		h.logger.Error("encode audit csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	filename := "audit-" + h.now().Format("20060102-150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(csvBytes)
}

// authorize requires the admin role. The trail may reference any admin,
// so the lower support tiers never read it.
func (h *Handler) authorize(r *http.Request) error {
	sess := shared.SessionFromContext(r.Context())
	_, err := h.authorizer.Authorize(r.Context(), sess, guard.ActionView, guard.Options{
		RequiredRole: guard.RoleAdmin,
	})
	return err
}

func (h *Handler) parseFilters(r *http.Request) (audit.Filters, error) {
	q := r.URL.Query()
	var f audit.Filters

	if raw := q.Get("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("%w: invalid from timestamp", httpx.ErrValidation)
		}
		f.From = t
	}
	if raw := q.Get("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return f, fmt.Errorf("%w: invalid to timestamp", httpx.ErrValidation)
		}
		f.To = t
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Sub(f.From) > maxDateRange {
		return f, fmt.Errorf("%w: date range exceeds 90 days", httpx.ErrValidation)
	}
	if raw := q.Get("actor_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return f, fmt.Errorf("%w: invalid actor_id", httpx.ErrValidation)
		}
		f.ActorID = &id
	}
	f.Action = q.Get("action")
	if raw := q.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return f, fmt.Errorf("%w: invalid page", httpx.ErrValidation)
		}
		f.Page = page
	}
	if raw := q.Get("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return f, fmt.Errorf("%w: invalid page_size", httpx.ErrValidation)
		}
		f.PageSize = size
	}
	return f, nil
}
