package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunRecorder persists audit entries through bun. It deliberately exposes no
// update path; the table is written append-only plus the retention purge.
type BunRecorder struct {
	db  bun.IDB
	now func() time.Time
}

// BunRecorderOption configures the recorder.
type BunRecorderOption func(*BunRecorder)

// WithClock overrides the clock used to stamp entries missing a timestamp.
func WithClock(clock func() time.Time) BunRecorderOption {
	return func(r *BunRecorder) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewBunRecorder constructs a recorder over the supplied database handle.
func NewBunRecorder(db bun.IDB, opts ...BunRecorderOption) *BunRecorder {
	r := &BunRecorder{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record inserts the entry.
func (r *BunRecorder) Record(ctx context.Context, entry Entry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.now()
	}
	if _, err := r.db.NewInsert().Model(&entry).Exec(ctx); err != nil {
		return fmt.Errorf("audit: record failed: %w", err)
	}
	return nil
}

// List returns entries matching the filter, newest first.
func (r *BunRecorder) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	entries := []Entry{}
	query := r.db.NewSelect().Model(&entries).Order("created_at DESC")
	if filter.ActorID != uuid.Nil {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.TargetType != "" {
		query = query.Where("target_type = ?", filter.TargetType)
	}
	if filter.TargetID != "" {
		query = query.Where("target_id = ?", filter.TargetID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("audit: list failed: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan purges entries created before the cutoff.
func (r *BunRecorder) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.NewDelete().
		Model((*Entry)(nil)).
		Where("created_at < ?", cutoff).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("audit: purge failed: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("audit: purge row count unavailable: %w", err)
	}
	return int(affected), nil
}
