package content

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	"github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunEntryLookup answers the fast read-only questions the write path asks
// before opening a transaction, most importantly the advisory slug check.
// With caching services attached, repeated lookups skip the database; the
// unique index remains the authority either way.
type BunEntryLookup struct {
	repo repository.Repository[*Entry]
}

// NewBunEntryLookup creates a lookup without caching.
func NewBunEntryLookup(db *bun.DB) *BunEntryLookup {
	return NewBunEntryLookupWithCache(db, nil, nil)
}

// NewBunEntryLookupWithCache creates a lookup with caching services.
func NewBunEntryLookupWithCache(db *bun.DB, cacheService cache.CacheService, serializer cache.KeySerializer) *BunEntryLookup {
	base := NewEntryRepository(db)
	if cacheService != nil && serializer != nil {
		base = repositorycache.New(base, cacheService, serializer)
	}
	return &BunEntryLookup{repo: base}
}

// GetByID retrieves an entry without its associations.
func (r *BunEntryLookup) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	record, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "entry", id.String())
	}
	if record.DeletedAt != nil {
		return nil, &NotFoundError{Resource: "entry", Key: id.String()}
	}
	return record, nil
}

// GetBySlug retrieves an entry by type and slug without its associations.
func (r *BunEntryLookup) GetBySlug(ctx context.Context, entryType, slugValue string) (*Entry, error) {
	records, _, err := r.repo.List(ctx,
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.entry_type = ?", entryType)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.slug = ?", slugValue)
		}),
		repository.SelectRawProcessor(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.deleted_at IS NULL")
		}),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, mapRepositoryError(err, "entry", slugValue)
	}
	if len(records) == 0 {
		return nil, &NotFoundError{Resource: "entry", Key: entryType + "/" + slugValue}
	}
	return records[0], nil
}

// SlugTaken reports whether another live entry of the type already owns the
// slug. The result is advisory; the database constraint settles races.
func (r *BunEntryLookup) SlugTaken(ctx context.Context, entryType, slugValue string, excludeID uuid.UUID) (bool, error) {
	record, err := r.GetBySlug(ctx, entryType, slugValue)
	if err != nil {
		var notFound *NotFoundError
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	if excludeID != uuid.Nil && record.ID == excludeID {
		return false, nil
	}
	return true, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}

	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{Resource: resource, Key: key}
	}

	return fmt.Errorf("%s repository error: %w", resource, err)
}
