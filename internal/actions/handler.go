package actions

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/platform/httpx"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Handler exposes the privileged actions over HTTP.
type Handler struct {
	logger           *slog.Logger
	service          *Service
	hasher           *shared.IPHasher
	validator        *validator.Validate
	credentialMaxAge time.Duration
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, hasher *shared.IPHasher, credentialMaxAge time.Duration) *Handler {
	return &Handler{
		logger:           logger,
		service:          service,
		hasher:           hasher,
		validator:        validator.New(),
		credentialMaxAge: credentialMaxAge,
	}
}

// MountRoutes registers the admin action routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/me", h.handleStatus)
	r.Get("/users", h.handleListUsers)
	r.Delete("/users/{id}", h.handleDeleteUser)
	r.Post("/users/{id}/uploads", h.handleToggleUploads)
	r.Get("/users/{id}/export", h.handleExport)
	r.Get("/roles", h.handleListRoles)
	r.Put("/roles/{id}", h.handleAssignRole)
	r.Delete("/roles/{id}", h.handleRevokeRole)
}

func (h *Handler) requestMeta(r *http.Request) RequestMeta {
	return RequestMeta{
		IPHash:    h.hasher.Hash(r.RemoteAddr),
		UserAgent: r.UserAgent(),
	}
}

func targetID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id", httpx.ErrValidation)
	}
	return id, nil
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context(), shared.SessionFromContext(r.Context()), h.credentialMaxAge)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, status)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListAccounts(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": list})
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := targetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteUser(r.Context(), shared.SessionFromContext(r.Context()), id, h.requestMeta(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type toggleRequest struct {
	Disabled *bool `json:"disabled" validate:"required"`
}

func (h *Handler) handleToggleUploads(w http.ResponseWriter, r *http.Request) {
	id, err := targetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: disabled flag required", httpx.ErrValidation))
		return
	}
	if err := h.service.ToggleUploads(r.Context(), shared.SessionFromContext(r.Context()), id, *req.Disabled, h.requestMeta(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	state := "enabled"
	if *req.Disabled {
		state = "disabled"
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"uploads": state})
}

func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	id, err := targetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	export, err := h.service.ExportData(r.Context(), shared.SessionFromContext(r.Context()), id, h.requestMeta(r))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, export)
}

func (h *Handler) handleListRoles(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListRoles(r.Context(), shared.SessionFromContext(r.Context()))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": list})
}

type assignRoleRequest struct {
	Role string `json:"role" validate:"required"`
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	id, err := targetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req assignRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: malformed body", httpx.ErrValidation))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: role required", httpx.ErrValidation))
		return
	}
	if !guard.Role(req.Role).Valid() {
		httpx.RespondError(w, fmt.Errorf("%w: unknown role %q", httpx.ErrValidation, req.Role))
		return
	}
	if err := h.service.AssignRole(r.Context(), shared.SessionFromContext(r.Context()), id, guard.Role(req.Role), h.requestMeta(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRevokeRole(w http.ResponseWriter, r *http.Request) {
	id, err := targetID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.RevokeRole(r.Context(), shared.SessionFromContext(r.Context()), id, h.requestMeta(r)); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
