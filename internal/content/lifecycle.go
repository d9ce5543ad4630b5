package content

import (
	"time"

	"github.com/goliatone/go-backoffice/internal/domain"
)

// TransitionRequest captures the lifecycle portion of a create or update
// mutation. PublishedAt set wins over any stored value; ClearPublishedAt
// drops a retained timestamp when the target state allows it.
type TransitionRequest struct {
	Status           domain.Status
	PublishedAt      *time.Time
	ClearPublishedAt bool
}

// Transition computes the next (status, publishedAt) pair from the current
// pair and the requested change. It owns the derivation rules:
//
//   - moving to PUBLISHED without a stored or supplied timestamp stamps now;
//     republishing keeps the original timestamp unless the caller overrides
//   - SCHEDULED requires a timestamp, supplied or previously stored
//   - DRAFT and ARCHIVED retain a stored timestamp so a later republish keeps
//     the original date; the caller may clear it explicitly
func Transition(current domain.Status, currentPublishedAt *time.Time, req TransitionRequest, now time.Time) (domain.Status, *time.Time, error) {
	next := req.Status
	if next == "" {
		next = current
	}
	if next == "" {
		next = domain.StatusDraft
	}
	if !next.IsValid() {
		return "", nil, NewValidationError("status", "unknown status "+string(next))
	}

	publishedAt := copyTime(currentPublishedAt)
	if req.PublishedAt != nil {
		publishedAt = copyTime(req.PublishedAt)
	} else if req.ClearPublishedAt {
		publishedAt = nil
	}

	switch next {
	case domain.StatusPublished:
		if publishedAt == nil {
			if req.ClearPublishedAt {
				return "", nil, NewValidationError("publishedAt", "cannot clear the publish date of a published entry")
			}
			stamped := now.UTC()
			publishedAt = &stamped
		}
	case domain.StatusScheduled:
		if publishedAt == nil {
			if req.ClearPublishedAt {
				return "", nil, NewValidationError("publishedAt", "cannot clear the publish date of a scheduled entry")
			}
			return "", nil, NewValidationError("publishedAt", "scheduled entries require a publish date")
		}
	}

	return next, publishedAt, nil
}

// DueForPublish reports whether a scheduled entry's publish time has passed.
func DueForPublish(entry *Entry, now time.Time) bool {
	if entry == nil || entry.Status != string(domain.StatusScheduled) {
		return false
	}
	if entry.PublishedAt == nil {
		return false
	}
	return !entry.PublishedAt.After(now)
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
