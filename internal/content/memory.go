package content

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryEntryStore is an in-memory EntryStore for tests and examples. It
// enforces the same per-type slug uniqueness the database constraint does
// and mirrors transactional behavior: a failed write leaves no trace.
type MemoryEntryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry

	failErr      error
	failAssocErr error
}

// NewMemoryEntryStore builds an empty store.
func NewMemoryEntryStore() *MemoryEntryStore {
	return &MemoryEntryStore{
		entries: make(map[uuid.UUID]*Entry),
	}
}

// Fail makes every subsequent call return err. Pass nil to recover.
func (s *MemoryEntryStore) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

// FailAssociations makes Create and Update fail after the entry row would
// have been written, simulating a mid-transaction association failure. The
// write must roll back entirely.
func (s *MemoryEntryStore) FailAssociations(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAssocErr = err
}

// GetByID retrieves an entry by primary key.
func (s *MemoryEntryStore) GetByID(_ context.Context, id uuid.UUID) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	entry, ok := s.entries[id]
	if !ok || entry.DeletedAt != nil {
		return nil, &NotFoundError{Resource: "entry", Key: id.String()}
	}
	return cloneEntry(entry), nil
}

// GetBySlug retrieves an entry by type and slug.
func (s *MemoryEntryStore) GetBySlug(_ context.Context, entryType, slugValue string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	for _, entry := range s.entries {
		if entry.DeletedAt == nil && entry.EntryType == entryType && entry.Slug == slugValue {
			return cloneEntry(entry), nil
		}
	}
	return nil, &NotFoundError{Resource: "entry", Key: entryType + "/" + slugValue}
}

// List returns the page of entries matching the options plus the unpaged
// total, newest first.
func (s *MemoryEntryStore) List(_ context.Context, entryType string, opts ListOptions) ([]*Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, 0, s.failErr
	}

	opts = opts.Normalize()
	search := strings.ToLower(strings.TrimSpace(opts.Search))

	matched := make([]*Entry, 0)
	for _, entry := range s.entries {
		if entry.DeletedAt != nil || entry.EntryType != entryType {
			continue
		}
		if opts.Status != "" && entry.Status != string(opts.Status) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(entry.Title), search) &&
			!strings.Contains(strings.ToLower(entry.Slug), search) {
			continue
		}
		matched = append(matched, entry)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	offset := opts.Offset()
	if offset >= total {
		return []*Entry{}, total, nil
	}
	end := offset + opts.PageSize
	if end > total {
		end = total
	}

	page := make([]*Entry, 0, end-offset)
	for _, entry := range matched[offset:end] {
		page = append(page, cloneEntry(entry))
	}
	return page, total, nil
}

// ListScheduledDue returns scheduled entries whose publish time has passed.
func (s *MemoryEntryStore) ListScheduledDue(_ context.Context, now time.Time) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.failErr != nil {
		return nil, s.failErr
	}
	due := make([]*Entry, 0)
	for _, entry := range s.entries {
		if entry.DeletedAt != nil {
			continue
		}
		if DueForPublish(entry, now) {
			due = append(due, cloneEntry(entry))
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return due[i].PublishedAt.Before(*due[j].PublishedAt)
	})
	return due, nil
}

// Create stores a new entry, enforcing per-type slug uniqueness.
func (s *MemoryEntryStore) Create(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if entry == nil || entry.ID == uuid.Nil {
		return ErrEntryIDRequired
	}
	if s.slugTaken(entry.EntryType, entry.Slug, entry.ID) {
		return &ConflictError{EntryType: entry.EntryType, Slug: entry.Slug}
	}
	if s.failAssocErr != nil {
		return &TransactionError{Op: "create", Cause: s.failAssocErr}
	}
	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// Update replaces the stored entry and all of its associations.
func (s *MemoryEntryStore) Update(_ context.Context, entry *Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if entry == nil || entry.ID == uuid.Nil {
		return ErrEntryIDRequired
	}
	existing, ok := s.entries[entry.ID]
	if !ok || existing.DeletedAt != nil {
		return &NotFoundError{Resource: "entry", Key: entry.ID.String()}
	}
	if s.slugTaken(entry.EntryType, entry.Slug, entry.ID) {
		return &ConflictError{EntryType: entry.EntryType, Slug: entry.Slug}
	}
	if s.failAssocErr != nil {
		return &TransactionError{Op: "update", Cause: s.failAssocErr}
	}
	s.entries[entry.ID] = cloneEntry(entry)
	return nil
}

// Delete soft-deletes the entry. The slug becomes reusable immediately.
func (s *MemoryEntryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	entry, ok := s.entries[id]
	if !ok || entry.DeletedAt != nil {
		return &NotFoundError{Resource: "entry", Key: id.String()}
	}
	now := time.Now().UTC()
	entry.DeletedAt = &now
	return nil
}

// Purge removes the entry permanently, soft-deleted or not.
func (s *MemoryEntryStore) Purge(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failErr != nil {
		return s.failErr
	}
	if _, ok := s.entries[id]; !ok {
		return &NotFoundError{Resource: "entry", Key: id.String()}
	}
	delete(s.entries, id)
	return nil
}

func (s *MemoryEntryStore) slugTaken(entryType, slugValue string, selfID uuid.UUID) bool {
	for _, entry := range s.entries {
		if entry.ID == selfID || entry.DeletedAt != nil {
			continue
		}
		if entry.EntryType == entryType && entry.Slug == slugValue {
			return true
		}
	}
	return false
}

func cloneEntry(entry *Entry) *Entry {
	if entry == nil {
		return nil
	}
	clone := *entry
	clone.PublishedAt = copyTime(entry.PublishedAt)
	clone.DeletedAt = copyTime(entry.DeletedAt)
	if entry.Metadata != nil {
		clone.Metadata = make(map[string]any, len(entry.Metadata))
		for k, v := range entry.Metadata {
			clone.Metadata[k] = v
		}
	}
	clone.Tags = cloneAssociations(entry.Tags)
	clone.Categories = cloneAssociations(entry.Categories)
	clone.Attachments = cloneAssociations(entry.Attachments)
	return &clone
}

func cloneAssociations[T any](items []*T) []*T {
	if items == nil {
		return nil
	}
	out := make([]*T, len(items))
	for i, item := range items {
		if item == nil {
			continue
		}
		clone := *item
		out[i] = &clone
	}
	return out
}

var _ EntryStore = (*MemoryEntryStore)(nil)
