package domain

import "strings"

// Status represents lifecycle states for back-office entities
type Status string

const (
	// StatusDraft indicates content still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies content available to consumers
	StatusPublished Status = "published"
	// StatusScheduled marks content that has a future publish time configured
	StatusScheduled Status = "scheduled"
	// StatusArchived marks content that is retained for history but not publicly visible
	StatusArchived Status = "archived"
)

// ParseStatus coerces arbitrary status strings into a known lifecycle state.
// Empty input defaults to draft; unknown values are returned as-is so callers
// can reject them explicitly.
func ParseStatus(input string) Status {
	if strings.TrimSpace(input) == "" {
		return StatusDraft
	}
	return Status(strings.ToLower(strings.TrimSpace(input)))
}

// IsValid reports whether the status is one of the four lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusScheduled, StatusArchived:
		return true
	}
	return false
}
