package content

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/uptrace/bun"
)

// BunEntryStore is the SQL-backed EntryStore. Mutations run inside a single
// transaction so the entry row and its association rows commit together; the
// partial unique index on (entry_type, slug) is the authority on uniqueness
// and its violation surfaces as a ConflictError.
type BunEntryStore struct {
	db  *bun.DB
	now func() time.Time
}

// BunEntryStoreOption configures the store.
type BunEntryStoreOption func(*BunEntryStore)

// WithStoreClock overrides the clock used for soft-delete stamps.
func WithStoreClock(clock func() time.Time) BunEntryStoreOption {
	return func(s *BunEntryStore) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewBunEntryStore constructs a store over the supplied database.
func NewBunEntryStore(db *bun.DB, opts ...BunEntryStoreOption) *BunEntryStore {
	store := &BunEntryStore{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// GetByID retrieves an entry with its associations.
func (s *BunEntryStore) GetByID(ctx context.Context, id uuid.UUID) (*Entry, error) {
	entry := new(Entry)
	err := s.db.NewSelect().
		Model(entry).
		Relation("Tags", orderByPosition).
		Relation("Categories", orderByPosition).
		Relation("Attachments", orderByPosition).
		Where("e.id = ?", id).
		Where("e.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "entry", Key: id.String()}
		}
		return nil, err
	}
	return entry, nil
}

// GetBySlug retrieves an entry by type and slug.
func (s *BunEntryStore) GetBySlug(ctx context.Context, entryType, slugValue string) (*Entry, error) {
	entry := new(Entry)
	err := s.db.NewSelect().
		Model(entry).
		Relation("Tags", orderByPosition).
		Relation("Categories", orderByPosition).
		Relation("Attachments", orderByPosition).
		Where("e.entry_type = ?", entryType).
		Where("e.slug = ?", slugValue).
		Where("e.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "entry", Key: entryType + "/" + slugValue}
		}
		return nil, err
	}
	return entry, nil
}

// List returns the requested page plus the unpaged total, newest first.
func (s *BunEntryStore) List(ctx context.Context, entryType string, opts ListOptions) ([]*Entry, int, error) {
	opts = opts.Normalize()

	entries := []*Entry{}
	query := s.db.NewSelect().
		Model(&entries).
		Where("e.entry_type = ?", entryType).
		Where("e.deleted_at IS NULL")

	if opts.Status != "" {
		query = query.Where("e.status = ?", string(opts.Status))
	}
	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Where("LOWER(e.title) LIKE ?", pattern).
				WhereOr("LOWER(e.slug) LIKE ?", pattern)
		})
	}

	total, err := query.Count(ctx)
	if err != nil {
		return nil, 0, err
	}

	err = query.
		Order("e.created_at DESC").
		Limit(opts.PageSize).
		Offset(opts.Offset()).
		Scan(ctx)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ListScheduledDue returns scheduled entries whose publish time has passed.
func (s *BunEntryStore) ListScheduledDue(ctx context.Context, now time.Time) ([]*Entry, error) {
	entries := []*Entry{}
	err := s.db.NewSelect().
		Model(&entries).
		Where("e.status = ?", "scheduled").
		Where("e.published_at IS NOT NULL").
		Where("e.published_at <= ?", now).
		Where("e.deleted_at IS NULL").
		Order("e.published_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Create inserts the entry and its associations in one transaction.
func (s *BunEntryStore) Create(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ID == uuid.Nil {
		return ErrEntryIDRequired
	}
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(entry).Exec(ctx); err != nil {
			return err
		}
		return insertAssociations(ctx, tx, entry)
	})
	return s.mapWriteError("create", entry, err)
}

// Update rewrites the entry row and replaces every association in one
// transaction. Associations are deleted and reinserted rather than diffed;
// the payload is always the full desired set.
func (s *BunEntryStore) Update(ctx context.Context, entry *Entry) error {
	if entry == nil || entry.ID == uuid.Nil {
		return ErrEntryIDRequired
	}
	err := s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model(entry).
			WherePK().
			Where("deleted_at IS NULL").
			Exec(ctx)
		if err != nil {
			return err
		}
		if affected, err := res.RowsAffected(); err == nil && affected == 0 {
			return &NotFoundError{Resource: "entry", Key: entry.ID.String()}
		}
		if err := deleteAssociations(ctx, tx, entry.ID); err != nil {
			return err
		}
		return insertAssociations(ctx, tx, entry)
	})
	return s.mapWriteError("update", entry, err)
}

// Delete soft-deletes the entry, freeing its slug for reuse.
func (s *BunEntryStore) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEntryIDRequired
	}
	res, err := s.db.NewUpdate().
		Model((*Entry)(nil)).
		Set("deleted_at = ?", s.now().UTC()).
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		return &TransactionError{Op: "delete", Cause: err}
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "entry", Key: id.String()}
	}
	return nil
}

// Purge removes the entry row permanently. Association rows follow through
// the ON DELETE CASCADE constraints.
func (s *BunEntryStore) Purge(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrEntryIDRequired
	}
	res, err := s.db.NewDelete().
		Model((*Entry)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return &TransactionError{Op: "purge", Cause: err}
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "entry", Key: id.String()}
	}
	return nil
}

func (s *BunEntryStore) mapWriteError(op string, entry *Entry, err error) error {
	if err == nil {
		return nil
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	if isUniqueViolation(err) {
		return &ConflictError{EntryType: entry.EntryType, Slug: entry.Slug}
	}
	return &TransactionError{Op: op, Cause: err}
}

func insertAssociations(ctx context.Context, tx bun.Tx, entry *Entry) error {
	for position, tag := range entry.Tags {
		if tag.ID == uuid.Nil {
			tag.ID = uuid.New()
		}
		tag.EntryID = entry.ID
		tag.Position = position
	}
	for position, category := range entry.Categories {
		if category.ID == uuid.Nil {
			category.ID = uuid.New()
		}
		category.EntryID = entry.ID
		category.Position = position
	}
	for position, attachment := range entry.Attachments {
		if attachment.ID == uuid.Nil {
			attachment.ID = uuid.New()
		}
		attachment.EntryID = entry.ID
		attachment.Position = position
	}

	if len(entry.Tags) > 0 {
		if _, err := tx.NewInsert().Model(&entry.Tags).Exec(ctx); err != nil {
			return err
		}
	}
	if len(entry.Categories) > 0 {
		if _, err := tx.NewInsert().Model(&entry.Categories).Exec(ctx); err != nil {
			return err
		}
	}
	if len(entry.Attachments) > 0 {
		if _, err := tx.NewInsert().Model(&entry.Attachments).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func deleteAssociations(ctx context.Context, tx bun.Tx, entryID uuid.UUID) error {
	if _, err := tx.NewDelete().Model((*EntryTag)(nil)).Where("entry_id = ?", entryID).Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*EntryCategory)(nil)).Where("entry_id = ?", entryID).Exec(ctx); err != nil {
		return err
	}
	if _, err := tx.NewDelete().Model((*EntryAttachment)(nil)).Where("entry_id = ?", entryID).Exec(ctx); err != nil {
		return err
	}
	return nil
}

// isUniqueViolation recognizes unique constraint violations from Postgres
// (class 23505) and SQLite.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func orderByPosition(q *bun.SelectQuery) *bun.SelectQuery {
	return q.Order("position ASC")
}

var _ EntryStore = (*BunEntryStore)(nil)
