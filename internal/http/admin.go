package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/goliatone/go-backoffice/internal/access"
	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/goliatone/go-backoffice/internal/content"
	"github.com/goliatone/go-backoffice/internal/logging"
	"github.com/goliatone/go-backoffice/pkg/interfaces"
	"github.com/google/uuid"
)

// SessionResolver extracts the account identifier a request presents. A
// request with no credentials resolves to uuid.Nil; the gate turns that into
// an unauthenticated denial.
type SessionResolver interface {
	ResolveRequest(r *http.Request) (uuid.UUID, error)
}

// AdminAPI serves the back-office JSON endpoints. Every route runs through
// the access gate before touching a service.
type AdminAPI struct {
	basePath string
	service  *content.Service
	gate     *access.Gate
	sessions SessionResolver
	audits   audit.Recorder
	logger   interfaces.Logger
}

// AdminOption mutates the AdminAPI configuration.
type AdminOption func(*AdminAPI)

// WithBasePath overrides the base API path (defaults to "/admin/api").
func WithBasePath(path string) AdminOption {
	return func(api *AdminAPI) {
		if trimmed := strings.TrimSpace(path); trimmed != "" {
			api.basePath = trimmed
		}
	}
}

// WithContentService wires the content service.
func WithContentService(service *content.Service) AdminOption {
	return func(api *AdminAPI) {
		api.service = service
	}
}

// WithGate wires the access gate.
func WithGate(gate *access.Gate) AdminOption {
	return func(api *AdminAPI) {
		api.gate = gate
	}
}

// WithSessionResolver wires session token resolution.
func WithSessionResolver(resolver SessionResolver) AdminOption {
	return func(api *AdminAPI) {
		api.sessions = resolver
	}
}

// WithAuditRecorder wires the audit trail for the read endpoints.
func WithAuditRecorder(recorder audit.Recorder) AdminOption {
	return func(api *AdminAPI) {
		api.audits = recorder
	}
}

// WithLogger attaches a logger.
func WithLogger(logger interfaces.Logger) AdminOption {
	return func(api *AdminAPI) {
		if logger != nil {
			api.logger = logger
		}
	}
}

// NewAdminAPI constructs an AdminAPI instance.
func NewAdminAPI(opts ...AdminOption) *AdminAPI {
	api := &AdminAPI{
		basePath: "/admin/api",
		logger:   logging.HTTPLogger(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// Register attaches every admin endpoint to the provided mux.
func (api *AdminAPI) Register(mux *http.ServeMux) error {
	if mux == nil {
		return fmt.Errorf("http: mux is required")
	}
	if api.service == nil {
		return fmt.Errorf("http: content service is required")
	}
	if api.gate == nil {
		return fmt.Errorf("http: access gate is required")
	}

	base := joinPath(api.basePath, "")
	for _, name := range api.service.Types().Names() {
		descriptor, ok := api.service.Types().Lookup(name)
		if !ok {
			continue
		}
		api.registerEntryRoutes(mux, base, descriptor)
	}
	api.registerAuditRoutes(mux, base)
	api.registerSessionRoutes(mux, base)
	return nil
}

// guard resolves the request's session and runs the enforcing access checks
// before invoking the handler. The grant's permission checker rides on the
// request context for any downstream Require call.
func (api *AdminAPI) guard(req access.Requirement, handler func(http.ResponseWriter, *http.Request, *access.Grant)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actorID := uuid.Nil
		if api.sessions != nil {
			resolved, err := api.sessions.ResolveRequest(r)
			if err == nil {
				actorID = resolved
			}
		}

		grant, err := api.gate.Authorize(r.Context(), actorID, req)
		if err != nil {
			api.writeError(w, err)
			return
		}

		handler(w, r.WithContext(grant.Context(r.Context())), grant)
	}
}
