package permissions

import (
	"context"
	"errors"
	"strings"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPublish Action = "publish"
)

const (
	ResourceArticles   = "articles"
	ResourceFAQs       = "faqs"
	ResourceBranches   = "branches"
	ResourceServices   = "services"
	ResourceInsurances = "insurances"
	ResourceForms      = "forms"
	ResourceHeroSlides = "hero_slides"
	ResourcePages      = "pages"
	ResourceUsers      = "users"
	ResourceAudit      = "audit"
)

const (
	UsersManage = "users:manage"
	AuditRead   = "audit:read"
	AuditPurge  = "audit:purge"
)

var ErrPermissionDenied = errors.New("permissions: denied")

type Error struct {
	Permission string
}

func (e Error) Error() string {
	if strings.TrimSpace(e.Permission) == "" {
		return "permission denied"
	}
	return "permission denied: " + e.Permission
}

func (e Error) Unwrap() error {
	return ErrPermissionDenied
}

// PermissionSet captures common CRUD permission tokens.
type PermissionSet struct {
	Read    string `json:"read,omitempty"`
	Create  string `json:"create,omitempty"`
	Update  string `json:"update,omitempty"`
	Delete  string `json:"delete,omitempty"`
	Publish string `json:"publish,omitempty"`
}

// ResourcePermissions creates a permission set for a resource.
func ResourcePermissions(resource string, includePublish bool) PermissionSet {
	normalized := normalizeToken(resource)
	perms := PermissionSet{
		Read:   Join(normalized, ActionRead),
		Create: Join(normalized, ActionCreate),
		Update: Join(normalized, ActionUpdate),
		Delete: Join(normalized, ActionDelete),
	}
	if includePublish {
		perms.Publish = Join(normalized, ActionPublish)
	}
	return perms
}

// ContentTypePermissions returns the permission set for a content type slug.
func ContentTypePermissions(slug string) PermissionSet {
	return ResourcePermissions(slug, true)
}

// Join builds a permission token from resource and action.
func Join(resource string, action Action) string {
	res := normalizeToken(resource)
	act := normalizeToken(string(action))
	if res == "" || act == "" {
		return ""
	}
	return res + ":" + act
}

// List returns the non-empty permissions in the set.
func (p PermissionSet) List() []string {
	out := make([]string, 0, 5)
	if p.Read != "" {
		out = append(out, p.Read)
	}
	if p.Create != "" {
		out = append(out, p.Create)
	}
	if p.Update != "" {
		out = append(out, p.Update)
	}
	if p.Delete != "" {
		out = append(out, p.Delete)
	}
	if p.Publish != "" {
		out = append(out, p.Publish)
	}
	return out
}

type Checker interface {
	Allowed(permission string) bool
}

type CheckerFunc func(permission string) bool

func (fn CheckerFunc) Allowed(permission string) bool {
	return fn(permission)
}

type Set map[string]struct{}

func NewSet(perms ...string) Set {
	set := Set{}
	for _, perm := range perms {
		normalized := normalizePermission(perm)
		if normalized == "" {
			continue
		}
		set[normalized] = struct{}{}
	}
	return set
}

func (s Set) Allowed(permission string) bool {
	if len(s) == 0 {
		return false
	}
	normalized := normalizePermission(permission)
	if normalized == "" {
		return false
	}
	if _, ok := s[normalized]; ok {
		return true
	}
	resource, _ := splitPermission(normalized)
	if resource != "" {
		if _, ok := s[resource+":*"]; ok {
			return true
		}
	}
	if _, ok := s["*"]; ok {
		return true
	}
	return false
}

type contextKey string

const checkerKey contextKey = "backoffice.permissions.checker"

// WithChecker stores a permission checker on the context.
func WithChecker(ctx context.Context, checker Checker) context.Context {
	if ctx == nil || checker == nil {
		return ctx
	}
	return context.WithValue(ctx, checkerKey, checker)
}

// WithPermissions stores a static permission set on the context.
func WithPermissions(ctx context.Context, perms ...string) context.Context {
	if ctx == nil || len(perms) == 0 {
		return ctx
	}
	return WithChecker(ctx, NewSet(perms...))
}

// CheckerFromContext returns the configured permission checker if available.
func CheckerFromContext(ctx context.Context) Checker {
	if ctx == nil {
		return nil
	}
	value := ctx.Value(checkerKey)
	if value == nil {
		return nil
	}
	switch typed := value.(type) {
	case Checker:
		return typed
	case []string:
		return NewSet(typed...)
	case map[string]struct{}:
		return Set(typed)
	default:
		return nil
	}
}

// Require enforces a permission requirement against the context checker.
// A missing checker denies: requests that never passed through the access
// gate hold no capabilities.
func Require(ctx context.Context, permission string) error {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return nil
	}
	checker := CheckerFromContext(ctx)
	if checker == nil {
		return Error{Permission: normalized}
	}
	if checker.Allowed(normalized) {
		return nil
	}
	return Error{Permission: normalized}
}

func splitPermission(permission string) (string, Action) {
	normalized := normalizePermission(permission)
	if normalized == "" {
		return "", ""
	}
	parts := strings.SplitN(normalized, ":", 2)
	resource := normalizeToken(parts[0])
	if len(parts) == 1 {
		return resource, ""
	}
	return resource, Action(normalizeToken(parts[1]))
}

func normalizePermission(permission string) string {
	trimmed := strings.TrimSpace(permission)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(trimmed)
}

func normalizeToken(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
