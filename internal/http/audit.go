package http

import (
	"net/http"
	"strings"

	"github.com/goliatone/go-backoffice/internal/access"
	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/goliatone/go-backoffice/internal/permissions"
	"github.com/google/uuid"
)

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
	Active        bool `json:"active"`
}

func (api *AdminAPI) registerAuditRoutes(mux *http.ServeMux, base string) {
	if api.audits == nil {
		return
	}
	mux.HandleFunc("GET "+joinPath(base, "audit"), api.guard(
		access.RequirePermission(permissions.AuditRead),
		api.handleAuditList))
}

func (api *AdminAPI) handleAuditList(w http.ResponseWriter, r *http.Request, _ *access.Grant) {
	query := r.URL.Query()
	filter := audit.ListFilter{
		TargetType: strings.TrimSpace(query.Get("target_type")),
		TargetID:   strings.TrimSpace(query.Get("target_id")),
		Limit:      parseIntQuery(query.Get("limit"), 100),
	}
	if raw := strings.TrimSpace(query.Get("actor_id")); raw != "" {
		actorID, err := uuid.Parse(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid actor_id"})
			return
		}
		filter.ActorID = actorID
	}

	entries, err := api.audits.List(r.Context(), filter)
	if err != nil {
		api.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// registerSessionRoutes exposes the cosmetic session probe the admin shell
// uses to decide between the login page and the dashboard. It runs the
// advisory path, never the enforcing one, and is safe to fail open.
func (api *AdminAPI) registerSessionRoutes(mux *http.ServeMux, base string) {
	mux.HandleFunc("GET "+joinPath(base, "session"), api.handleSessionProbe)
}

func (api *AdminAPI) handleSessionProbe(w http.ResponseWriter, r *http.Request) {
	actorID := uuid.Nil
	if api.sessions != nil {
		if resolved, err := api.sessions.ResolveRequest(r); err == nil {
			actorID = resolved
		}
	}
	hint := api.gate.Advise(r.Context(), actorID)
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: hint.Authenticated,
		Active:        hint.Active,
	})
}
