package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Recorder persists audit entries. Record is append-only; DeleteOlderThan is
// the retention purge and must stay behind an explicitly privileged caller.
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// ListFilter narrows audit queries. Zero value lists everything.
type ListFilter struct {
	ActorID    uuid.UUID
	TargetType string
	TargetID   string
	Limit      int
}

// MemoryRecorder accumulates audit entries in-memory for scaffolding and tests.
type MemoryRecorder struct {
	mu      sync.Mutex
	entries []Entry
	err     error
}

// NewMemoryRecorder constructs an empty recorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

// Record stores the supplied entry.
func (r *MemoryRecorder) Record(_ context.Context, entry Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	copied := entry
	if copied.Metadata != nil {
		metadata := make(map[string]any, len(copied.Metadata))
		for k, v := range copied.Metadata {
			metadata[k] = v
		}
		copied.Metadata = metadata
	}
	r.entries = append(r.entries, copied)
	return nil
}

// List returns the recorded entries matching the filter, newest first.
func (r *MemoryRecorder) List(_ context.Context, filter ListFilter) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Entry, 0, len(r.entries))
	for _, entry := range r.entries {
		if filter.ActorID != uuid.Nil && entry.ActorID != filter.ActorID {
			continue
		}
		if filter.TargetType != "" && entry.TargetType != filter.TargetType {
			continue
		}
		if filter.TargetID != "" && entry.TargetID != filter.TargetID {
			continue
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// DeleteOlderThan removes entries created before the cutoff and reports how
// many were purged.
func (r *MemoryRecorder) DeleteOlderThan(_ context.Context, cutoff time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}

	kept := r.entries[:0]
	purged := 0
	for _, entry := range r.entries {
		if entry.CreatedAt.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, entry)
	}
	r.entries = kept
	return purged, nil
}

// Entries returns a snapshot of every recorded entry in insertion order.
func (r *MemoryRecorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Fail configures the recorder to return the supplied error on subsequent writes.
func (r *MemoryRecorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}
