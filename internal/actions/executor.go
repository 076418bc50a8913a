package actions

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/gatehouse-io/gatehouse/internal/accounts"
	"github.com/gatehouse-io/gatehouse/internal/audit"
	"github.com/gatehouse-io/gatehouse/internal/guard"
	"github.com/gatehouse-io/gatehouse/internal/identity"
	"github.com/gatehouse-io/gatehouse/internal/roles"
	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// ActorResolver resolves the authenticated principal for a session.
type ActorResolver interface {
	Resolve(ctx context.Context, sess *shared.Session) (identity.Principal, error)
}

// RoleSource is the fresh-read role lookup. A nil record means the
// principal is not an admin.
type RoleSource interface {
	GetRole(ctx context.Context, accountID int64) (*roles.Record, error)
}

// RoleAdmin mutates and enumerates role records; only manage_roles and
// admin-gated reads reach it.
type RoleAdmin interface {
	Assign(ctx context.Context, accountID int64, role guard.Role) (roles.Record, error)
	Deactivate(ctx context.Context, accountID int64) error
	List(ctx context.Context) ([]roles.Record, error)
}

// AccountStore is the opaque user-record store the side effects run
// against.
type AccountStore interface {
	FindByID(ctx context.Context, id int64) (accounts.Account, error)
	List(ctx context.Context) ([]accounts.Account, error)
	DeleteCascade(ctx context.Context, id int64) error
	SetUploadsDisabled(ctx context.Context, id int64, disabled bool) error
	Snapshot(ctx context.Context, id int64) (accounts.Snapshot, error)
}

// Recorder appends audit entries.
type Recorder interface {
	Record(ctx context.Context, entry audit.Entry) (uuid.UUID, error)
}

// DenialObserver counts authorization denials as a security signal.
type DenialObserver interface {
	ObserveDenial(action, reason string)
}

// Service executes privileged actions. All collaborators arrive through
// the constructor so tests can substitute in-memory fakes.
type Service struct {
	resolver ActorResolver
	roleSrc  RoleSource
	roleAdm  RoleAdmin
	store    AccountStore
	guard    *guard.Guard
	audit    Recorder
	logger   *slog.Logger
	denials  DenialObserver
}

// NewService constructs the action executor service. denials may be nil.
func NewService(
	resolver ActorResolver,
	roleSrc RoleSource,
	roleAdm RoleAdmin,
	store AccountStore,
	g *guard.Guard,
	recorder Recorder,
	logger *slog.Logger,
	denials DenialObserver,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		resolver: resolver,
		roleSrc:  roleSrc,
		roleAdm:  roleAdm,
		store:    store,
		guard:    g,
		audit:    recorder,
		logger:   logger,
		denials:  denials,
	}
}

// Authorize resolves the caller and runs the guard for one action.
// Denials are logged and counted but not durably audited; the durable
// trail is reserved for attempts that reach a side effect.
func (s *Service) Authorize(ctx context.Context, sess *shared.Session, action guard.Action, opts guard.Options) (Actor, error) {
	principal, err := s.resolver.Resolve(ctx, sess)
	if err != nil {
		return Actor{}, err
	}
	record, err := s.roleSrc.GetRole(ctx, principal.Account.ID)
	if err != nil {
		return Actor{}, err
	}

	var guardRec *guard.Record
	if record != nil {
		guardRec = record.GuardRecord()
	}
	decision := s.guard.Authorize(guardRec, guard.Facts{MFAEnabled: principal.MFAEnabled}, action, opts)
	if !decision.Allowed {
		s.logger.Warn("authorization denied",
			slog.Int64("actor_id", principal.Account.ID),
			slog.String("action", string(action)),
			slog.String("reason", decision.Reason),
		)
		if s.denials != nil {
			s.denials.ObserveDenial(string(action), decision.Reason)
		}
		return Actor{}, shared.Forbiddenf("%s", decision.Reason)
	}
	return Actor{Principal: principal, Role: record}, nil
}

// record writes the single audit entry for an attempt that reached its
// side effect. failed selects the _FAILED action variant.
func (s *Service) record(ctx context.Context, actor Actor, action string, failed bool, targetID *int64, meta map[string]any, req RequestMeta) error {
	if failed {
		action += audit.FailedSuffix
	}
	actorID := actor.Principal.Account.ID
	entry := audit.Entry{
		ActorID:   &actorID,
		ActorRole: string(actor.Role.Role),
		Action:    action,
		TargetID:  targetID,
		Metadata:  meta,
		IPHash:    req.IPHash,
		UserAgent: req.UserAgent,
	}
	_, err := s.audit.Record(ctx, entry)
	return err
}

// findTarget loads the target account, translating a missing row into
// the terminal NotFound outcome before any side effect runs.
func (s *Service) findTarget(ctx context.Context, id int64) (accounts.Account, error) {
	account, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return accounts.Account{}, shared.ErrNotFound
		}
		return accounts.Account{}, err
	}
	return account, nil
}
