package http

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goliatone/go-backoffice/internal/access"
	"github.com/goliatone/go-backoffice/internal/content"
	"github.com/goliatone/go-backoffice/internal/domain"
	"github.com/goliatone/go-backoffice/internal/permissions"
)

type entryCreatePayload struct {
	Title       string         `json:"title"`
	Slug        string         `json:"slug,omitempty"`
	Body        string         `json:"body,omitempty"`
	Status      string         `json:"status,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	Categories  []string       `json:"categories,omitempty"`
	Attachments []string       `json:"attachments,omitempty"`
}

type entryUpdatePayload struct {
	Title            *string        `json:"title,omitempty"`
	Slug             *string        `json:"slug,omitempty"`
	Body             *string        `json:"body,omitempty"`
	Status           *string        `json:"status,omitempty"`
	PublishedAt      *time.Time     `json:"published_at,omitempty"`
	ClearPublishedAt bool           `json:"clear_published_at,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	Tags             *[]string      `json:"tags,omitempty"`
	Categories       *[]string      `json:"categories,omitempty"`
	Attachments      *[]string      `json:"attachments,omitempty"`
}

type entryListResponse struct {
	Items    []*content.Entry `json:"items"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (api *AdminAPI) registerEntryRoutes(mux *http.ServeMux, base string, descriptor content.TypeDescriptor) {
	root := joinPath(base, descriptor.Resource)
	perms := descriptor.Permissions()

	mux.HandleFunc("GET "+root, api.guard(
		access.RequirePermission(perms.Read),
		api.handleEntryList(descriptor)))
	mux.HandleFunc("POST "+root, api.guard(
		access.RequirePermission(perms.Create),
		api.handleEntryCreate(descriptor)))
	mux.HandleFunc("GET "+root+"/{id}", api.guard(
		access.RequirePermission(perms.Read),
		api.handleEntryGet(descriptor)))
	mux.HandleFunc("PATCH "+root+"/{id}", api.guard(
		access.RequirePermission(perms.Update),
		api.handleEntryUpdate(descriptor)))
	mux.HandleFunc("DELETE "+root+"/{id}", api.guard(
		access.RequirePermission(perms.Delete),
		api.handleEntryDelete(descriptor)))
}

func (api *AdminAPI) handleEntryList(descriptor content.TypeDescriptor) func(http.ResponseWriter, *http.Request, *access.Grant) {
	return func(w http.ResponseWriter, r *http.Request, _ *access.Grant) {
		query := r.URL.Query()
		opts := content.ListOptions{
			Search:   query.Get("search"),
			Status:   domain.Status(strings.TrimSpace(query.Get("status"))),
			Page:     parseIntQuery(query.Get("page"), 1),
			PageSize: parseIntQuery(query.Get("pageSize"), content.DefaultPageSize),
		}.Normalize()

		entries, total, err := api.service.List(r.Context(), descriptor.Name, opts)
		if err != nil {
			api.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entryListResponse{
			Items:    entries,
			Total:    total,
			Page:     opts.Page,
			PageSize: opts.PageSize,
		})
	}
}

func (api *AdminAPI) handleEntryGet(descriptor content.TypeDescriptor) func(http.ResponseWriter, *http.Request, *access.Grant) {
	return func(w http.ResponseWriter, r *http.Request, _ *access.Grant) {
		id, err := parseUUID(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
			return
		}
		entry, err := api.service.Get(r.Context(), descriptor.Name, id)
		if err != nil {
			api.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func (api *AdminAPI) handleEntryCreate(descriptor content.TypeDescriptor) func(http.ResponseWriter, *http.Request, *access.Grant) {
	return func(w http.ResponseWriter, r *http.Request, grant *access.Grant) {
		var payload entryCreatePayload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
			return
		}

		status := domain.ParseStatus(payload.Status)
		if !api.allowStatusChange(w, r, descriptor, status) {
			return
		}

		entry, err := api.service.Create(r.Context(), content.CreateInput{
			Type:        descriptor.Name,
			Title:       payload.Title,
			Slug:        payload.Slug,
			Body:        payload.Body,
			Status:      status,
			PublishedAt: payload.PublishedAt,
			Metadata:    payload.Metadata,
			Tags:        payload.Tags,
			Categories:  payload.Categories,
			Attachments: payload.Attachments,
			ActorID:     grant.Actor.ID,
		})
		if err != nil {
			api.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, entry)
	}
}

func (api *AdminAPI) handleEntryUpdate(descriptor content.TypeDescriptor) func(http.ResponseWriter, *http.Request, *access.Grant) {
	return func(w http.ResponseWriter, r *http.Request, grant *access.Grant) {
		id, err := parseUUID(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
			return
		}

		var payload entryUpdatePayload
		if err := decodeJSON(r, &payload); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: err.Error()})
			return
		}

		input := content.UpdateInput{
			ID:               id,
			Title:            payload.Title,
			Slug:             payload.Slug,
			Body:             payload.Body,
			PublishedAt:      payload.PublishedAt,
			ClearPublishedAt: payload.ClearPublishedAt,
			Metadata:         payload.Metadata,
			Tags:             payload.Tags,
			Categories:       payload.Categories,
			Attachments:      payload.Attachments,
			ActorID:          grant.Actor.ID,
		}
		if payload.Status != nil {
			status := domain.ParseStatus(*payload.Status)
			if !api.allowStatusChange(w, r, descriptor, status) {
				return
			}
			input.Status = &status
		}

		entry, err := api.service.Update(r.Context(), descriptor.Name, input)
		if err != nil {
			api.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entry)
	}
}

func (api *AdminAPI) handleEntryDelete(descriptor content.TypeDescriptor) func(http.ResponseWriter, *http.Request, *access.Grant) {
	return func(w http.ResponseWriter, r *http.Request, grant *access.Grant) {
		id, err := parseUUID(r.PathValue("id"))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: "invalid id"})
			return
		}
		remove := api.service.Delete
		if r.URL.Query().Get("permanent") == "true" {
			remove = api.service.Purge
		}
		if err := remove(r.Context(), descriptor.Name, id, grant.Actor.ID); err != nil {
			api.writeError(w, err)
			return
		}
		writeJSON(w, http.StatusNoContent, nil)
	}
}

// allowStatusChange enforces the publish permission on top of the route's
// create/update permission when the payload targets a visible state.
func (api *AdminAPI) allowStatusChange(w http.ResponseWriter, r *http.Request, descriptor content.TypeDescriptor, status domain.Status) bool {
	switch status {
	case domain.StatusPublished, domain.StatusScheduled:
		if err := permissions.Require(r.Context(), descriptor.Permissions().Publish); err != nil {
			api.writeError(w, err)
			return false
		}
	}
	return true
}
