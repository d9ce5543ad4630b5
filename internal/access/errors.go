package access

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated  = errors.New("access: session required")
	ErrInactiveAccount  = errors.New("access: account is inactive")
	ErrForbidden        = errors.New("access: forbidden")
	ErrStoreUnavailable = errors.New("access: actor store unavailable")
)

// Reason identifies which gate check produced a denial. Reasons stay
// fine-grained internally for audit and logging; the HTTP layer collapses
// them into 401/403 so callers cannot probe which check failed.
type Reason string

const (
	ReasonUnauthenticated  Reason = "UNAUTHENTICATED"
	ReasonInactiveAccount  Reason = "INACTIVE_ACCOUNT"
	ReasonForbidden        Reason = "FORBIDDEN"
	ReasonStoreUnavailable Reason = "ACTOR_STORE_UNAVAILABLE"
)

// DeniedError captures a gate denial with its internal reason.
type DeniedError struct {
	Reason     Reason
	Permission string
	Section    string
	Cause      error
}

func (e *DeniedError) Error() string {
	if e == nil {
		return ErrForbidden.Error()
	}
	var detail string
	switch {
	case strings.TrimSpace(e.Permission) != "":
		detail = "permission=" + e.Permission
	case strings.TrimSpace(e.Section) != "":
		detail = "section=" + e.Section
	}
	base := e.sentinel().Error()
	if detail == "" {
		return base
	}
	return fmt.Sprintf("%s: %s", base, detail)
}

func (e *DeniedError) Unwrap() error {
	if e == nil {
		return ErrForbidden
	}
	return e.sentinel()
}

func (e *DeniedError) sentinel() error {
	switch e.Reason {
	case ReasonUnauthenticated:
		return ErrUnauthenticated
	case ReasonInactiveAccount:
		return ErrInactiveAccount
	case ReasonStoreUnavailable:
		return ErrStoreUnavailable
	default:
		return ErrForbidden
	}
}

// NotFoundError represents missing actors from store lookups.
type NotFoundError struct {
	Key string
}

func (e *NotFoundError) Error() string {
	if e == nil || e.Key == "" {
		return "actor not found"
	}
	return fmt.Sprintf("actor %q not found", e.Key)
}
