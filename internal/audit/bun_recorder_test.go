package audit_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestBunRecorderRoundTripAndPurge(t *testing.T) {
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
	if _, err := bunDB.NewCreateTable().Model((*audit.Entry)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create audit table: %v", err)
	}

	recorder := audit.NewBunRecorder(bunDB)
	cutoff := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	actorID := uuid.New()

	stale := audit.Entry{
		ID: uuid.New(), ActorID: actorID, Action: "CMS_ARTICLE_UPDATE",
		TargetType: "article", TargetID: "a1", CreatedAt: cutoff.Add(-time.Hour),
	}
	fresh := audit.Entry{
		ID: uuid.New(), ActorID: actorID, Action: "CMS_ARTICLE_PUBLISH",
		TargetType: "article", TargetID: "a2", CreatedAt: cutoff.Add(time.Hour),
	}
	for _, entry := range []audit.Entry{stale, fresh} {
		if err := recorder.Record(ctx, entry); err != nil {
			t.Fatalf("record %s: %v", entry.Action, err)
		}
	}

	purged, err := recorder.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if purged != 1 {
		t.Fatalf("expected one purged row, got %d", purged)
	}

	remaining, err := recorder.List(ctx, audit.ListFilter{ActorID: actorID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(remaining) != 1 || remaining[0].TargetID != "a2" {
		t.Fatalf("expected only the fresh entry to remain, got %+v", remaining)
	}
}
