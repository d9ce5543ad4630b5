package cache

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// Invalidator signals which named cache partitions must be refreshed after a
// committed mutation. Implementations must be idempotent: invalidating an
// already-fresh tag is a no-op, so callers can safely retry.
type Invalidator interface {
	Invalidate(ctx context.Context, tags ...string) error
}

// InvalidatorFunc adapts a function to the Invalidator contract.
type InvalidatorFunc func(ctx context.Context, tags ...string) error

func (fn InvalidatorFunc) Invalidate(ctx context.Context, tags ...string) error {
	return fn(ctx, tags...)
}

// NewNoOp returns an invalidator that drops every signal.
func NewNoOp() Invalidator {
	return InvalidatorFunc(func(context.Context, ...string) error {
		return nil
	})
}

// NormalizeTags trims, lowercases, de-duplicates, and sorts tag names.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		normalized := strings.ToLower(strings.TrimSpace(tag))
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		out = append(out, normalized)
	}
	sort.Strings(out)
	return out
}

// Recorder is an in-memory invalidator that accumulates signals for tests.
type Recorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

// NewRecorder constructs an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Invalidate stores the normalized tag set.
func (r *Recorder) Invalidate(_ context.Context, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.calls = append(r.calls, NormalizeTags(tags))
	return nil
}

// Calls returns a snapshot of every invalidation signal received.
func (r *Recorder) Calls() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]string, len(r.calls))
	for i, call := range r.calls {
		out[i] = append([]string(nil), call...)
	}
	return out
}

// Fail configures the recorder to return the supplied error on subsequent calls.
func (r *Recorder) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// Reset clears recorded calls and any configured failure.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.err = nil
}
