package access

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-backoffice/internal/logging"
	"github.com/goliatone/go-backoffice/internal/permissions"
	"github.com/goliatone/go-backoffice/pkg/interfaces"
	"github.com/google/uuid"
)

// Actor is the authenticated principal as reported by the actor store.
type Actor struct {
	ID      uuid.UUID
	RoleIDs []string
	Active  bool
}

// ActorStore resolves actors from the source of truth. The gate queries it
// on every call; implementations must not serve the active flag from a
// long-lived session claim.
type ActorStore interface {
	GetActor(ctx context.Context, id uuid.UUID) (*Actor, error)
}

// Requirement describes what a request needs beyond a valid, active session.
// Zero value means authentication plus the active-account check only.
type Requirement struct {
	Permission string
	Section    string
}

// RequirePermission builds a requirement for a single permission token.
func RequirePermission(permission string) Requirement {
	return Requirement{Permission: permission}
}

// RequireSection builds a requirement for a coarse application section.
func RequireSection(section string) Requirement {
	return Requirement{Section: section}
}

// Grant is the successful outcome of an Authorize call. The permission set is
// derived from the actor's roles at call time and can be attached to the
// request context for downstream checks.
type Grant struct {
	Actor       *Actor
	Permissions permissions.Set
	Sections    permissions.Set
}

// Context returns ctx with the grant's permission checker attached.
func (g *Grant) Context(ctx context.Context) context.Context {
	if g == nil {
		return ctx
	}
	return permissions.WithChecker(ctx, g.Permissions)
}

// Hint is the advisory counterpart of a Grant, used only for cosmetic
// routing decisions (e.g. whether to render a dashboard link).
type Hint struct {
	Authenticated bool
	Active        bool
}

// GateOption configures the gate at construction time.
type GateOption func(*Gate)

// WithLogger overrides the gate logger.
func WithLogger(logger interfaces.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Gate performs the ordered access checks for every entry point: session
// validity, fresh active-account lookup, then permission or section
// membership. It is read-only and safe for concurrent use.
type Gate struct {
	actors   ActorStore
	registry *permissions.Registry
	logger   interfaces.Logger
}

// NewGate constructs an access gate over the supplied actor store and role
// registry.
func NewGate(actors ActorStore, registry *permissions.Registry, opts ...GateOption) *Gate {
	g := &Gate{
		actors:   actors,
		registry: registry,
		logger:   logging.NoOp(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Authorize runs the gate for an enforcing call. Any ambiguity denies:
// a nil actor identifier, a missing actor, an actor-store failure, an
// inactive account, or a missing capability all return a DeniedError whose
// internal reason is preserved for logging.
func (g *Gate) Authorize(ctx context.Context, actorID uuid.UUID, req Requirement) (*Grant, error) {
	if actorID == uuid.Nil {
		return nil, &DeniedError{Reason: ReasonUnauthenticated}
	}

	actor, err := g.lookup(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if !actor.Active {
		g.logger.Info("access.denied", "reason", string(ReasonInactiveAccount), "actor_id", actorID.String())
		return nil, &DeniedError{Reason: ReasonInactiveAccount}
	}

	grant := &Grant{
		Actor:       actor,
		Permissions: g.registry.PermissionsFor(actor.RoleIDs...),
		Sections:    g.registry.SectionsFor(actor.RoleIDs...),
	}

	if permission := strings.TrimSpace(req.Permission); permission != "" {
		if !grant.Permissions.Allowed(permission) {
			g.logger.Info("access.denied",
				"reason", string(ReasonForbidden),
				"actor_id", actorID.String(),
				"permission", permission,
			)
			return nil, &DeniedError{Reason: ReasonForbidden, Permission: permission}
		}
	}

	if section := permissions.SectionToken(req.Section); section != "" {
		if !grant.Sections.Allowed(section) {
			g.logger.Info("access.denied",
				"reason", string(ReasonForbidden),
				"actor_id", actorID.String(),
				"section", section,
			)
			return nil, &DeniedError{Reason: ReasonForbidden, Section: section}
		}
	}

	return grant, nil
}

// Advise resolves the actor for a cosmetic routing decision. Unlike
// Authorize it fails open on store errors: misrouting a redirect cannot leak
// protected data, and every data-bearing route still runs the enforcing
// path. The degraded lookup is logged so operators see it.
func (g *Gate) Advise(ctx context.Context, actorID uuid.UUID) Hint {
	if actorID == uuid.Nil {
		return Hint{}
	}

	actor, err := g.lookup(ctx, actorID)
	if err != nil {
		var denied *DeniedError
		if errors.As(err, &denied) && denied.Reason == ReasonStoreUnavailable {
			g.logger.Warn("access.advise.degraded", "actor_id", actorID.String(), "error", denied.Cause)
			return Hint{Authenticated: true, Active: true}
		}
		return Hint{}
	}

	return Hint{Authenticated: true, Active: actor.Active}
}

func (g *Gate) lookup(ctx context.Context, actorID uuid.UUID) (*Actor, error) {
	if g.actors == nil {
		return nil, &DeniedError{Reason: ReasonStoreUnavailable}
	}

	actor, err := g.actors.GetActor(ctx, actorID)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return nil, &DeniedError{Reason: ReasonUnauthenticated, Cause: err}
		}
		g.logger.Error("access.actor_lookup.failed", "actor_id", actorID.String(), "error", err)
		return nil, &DeniedError{Reason: ReasonStoreUnavailable, Cause: err}
	}
	if actor == nil {
		return nil, &DeniedError{Reason: ReasonUnauthenticated}
	}
	return actor, nil
}
