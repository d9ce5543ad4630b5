package domain

import internaldomain "github.com/goliatone/go-backoffice/internal/domain"

// Status represents lifecycle states for back-office entities.
type Status = internaldomain.Status

const (
	// StatusDraft indicates content still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPublished identifies content available to consumers.
	StatusPublished = internaldomain.StatusPublished
	// StatusScheduled marks content that has a future publish time configured.
	StatusScheduled = internaldomain.StatusScheduled
	// StatusArchived marks content that is retained for history but not publicly visible.
	StatusArchived = internaldomain.StatusArchived
)
