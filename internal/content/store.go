package content

import (
	"context"
	"time"

	"github.com/goliatone/go-backoffice/internal/domain"
	"github.com/google/uuid"
)

// ListOptions narrows and pages a per-type listing.
type ListOptions struct {
	Search   string
	Status   domain.Status
	Page     int
	PageSize int
}

// DefaultPageSize applies when a listing does not name one.
const DefaultPageSize = 20

// MaxPageSize caps listings regardless of the requested size.
const MaxPageSize = 100

// Normalize clamps paging values into their valid ranges.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.PageSize < 1 {
		o.PageSize = DefaultPageSize
	}
	if o.PageSize > MaxPageSize {
		o.PageSize = MaxPageSize
	}
	return o
}

// Offset returns the zero-based row offset for the page.
func (o ListOptions) Offset() int {
	normalized := o.Normalize()
	return (normalized.Page - 1) * normalized.PageSize
}

// EntryStore persists entries and their associations. Create and Update are
// atomic: the entry row and all association rows commit together or not at
// all, and slug collisions surface as a ConflictError from the same call.
// Delete soft-deletes and frees the slug; Purge removes the row and its
// associations permanently.
type EntryStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Entry, error)
	GetBySlug(ctx context.Context, entryType, slug string) (*Entry, error)
	List(ctx context.Context, entryType string, opts ListOptions) ([]*Entry, int, error)
	ListScheduledDue(ctx context.Context, now time.Time) ([]*Entry, error)
	Create(ctx context.Context, entry *Entry) error
	Update(ctx context.Context, entry *Entry) error
	Delete(ctx context.Context, id uuid.UUID) error
	Purge(ctx context.Context, id uuid.UUID) error
}
