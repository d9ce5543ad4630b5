package content

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// NewEntryRepository creates a repository for Entry records.
func NewEntryRepository(db *bun.DB) repository.Repository[*Entry] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Entry]{
		NewRecord:          func() *Entry { return &Entry{} },
		GetID:              func(e *Entry) uuid.UUID { return e.ID },
		SetID:              func(e *Entry, id uuid.UUID) { e.ID = id },
		GetIdentifier:      func() string { return "slug" },
		GetIdentifierValue: func(e *Entry) string { return e.Slug },
	})
}
