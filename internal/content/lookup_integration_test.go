package content_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-backoffice/internal/content"
	"github.com/goliatone/go-backoffice/internal/domain"
	repocache "github.com/goliatone/go-repository-cache/cache"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestBunEntryLookupWithCacheServesRepeatedReads(t *testing.T) {
	ctx := context.Background()

	sqlDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	bunDB := bun.NewDB(sqlDB, sqlitedialect.New())
	bunDB.SetMaxOpenConns(1)
	registerEntryModels(t, bunDB)

	store := content.NewBunEntryStore(bunDB)
	entry := &content.Entry{
		ID:        uuid.New(),
		EntryType: "article",
		Title:     "Flu Season Advice",
		Slug:      "flu-season-advice",
		Status:    string(domain.StatusDraft),
		AuthorID:  uuid.New(),
		UpdatedBy: uuid.New(),
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := store.Create(ctx, entry); err != nil {
		t.Fatalf("create entry: %v", err)
	}

	cacheCfg := repocache.DefaultConfig()
	cacheCfg.TTL = time.Minute
	cacheService, err := repocache.NewCacheService(cacheCfg)
	if err != nil {
		t.Fatalf("new cache service: %v", err)
	}
	lookup := content.NewBunEntryLookupWithCache(bunDB, cacheService, repocache.NewDefaultKeySerializer())

	got, err := lookup.GetBySlug(ctx, "article", "flu-season-advice")
	if err != nil {
		t.Fatalf("first get by slug: %v", err)
	}
	if got.ID != entry.ID {
		t.Fatalf("expected entry %s, got %s", entry.ID, got.ID)
	}

	cached, err := lookup.GetBySlug(ctx, "article", "flu-season-advice")
	if err != nil {
		t.Fatalf("cached get by slug: %v", err)
	}
	if cached.ID != entry.ID {
		t.Fatalf("expected cached entry %s, got %s", entry.ID, cached.ID)
	}

	taken, err := lookup.SlugTaken(ctx, "article", "flu-season-advice", uuid.Nil)
	if err != nil {
		t.Fatalf("slug taken: %v", err)
	}
	if !taken {
		t.Fatal("expected slug to be reported as taken")
	}

	taken, err = lookup.SlugTaken(ctx, "article", "flu-season-advice", entry.ID)
	if err != nil {
		t.Fatalf("slug taken excluding self: %v", err)
	}
	if taken {
		t.Fatal("expected slug check to exclude the entry itself")
	}
}

func registerEntryModels(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()
	models := []any{
		(*content.Entry)(nil),
		(*content.EntryTag)(nil),
		(*content.EntryCategory)(nil),
		(*content.EntryAttachment)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	if _, err := db.ExecContext(ctx, "CREATE UNIQUE INDEX IF NOT EXISTS uq_entries_type_slug ON entries (entry_type, slug) WHERE deleted_at IS NULL"); err != nil {
		t.Fatalf("create unique slug index: %v", err)
	}
}
