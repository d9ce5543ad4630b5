package auditcmd

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/google/uuid"
)

func TestPurgeRemovesOnlyExpiredEntries(t *testing.T) {
	recorder := audit.NewMemoryRecorder()
	ctx := context.Background()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	old := audit.Entry{ID: uuid.New(), ActorID: uuid.New(), Action: "CMS_FAQ_UPDATE", TargetType: "faq", TargetID: "f1", CreatedAt: now.AddDate(0, 0, -40)}
	fresh := audit.Entry{ID: uuid.New(), ActorID: uuid.New(), Action: "CMS_FAQ_UPDATE", TargetType: "faq", TargetID: "f2", CreatedAt: now.AddDate(0, 0, -5)}
	if err := recorder.Record(ctx, old); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := recorder.Record(ctx, fresh); err != nil {
		t.Fatalf("record: %v", err)
	}

	handler := NewPurgeHandler(recorder, nil)
	handler.now = func() time.Time { return now }

	if err := handler.Execute(ctx, PurgeCommand{RetentionDays: 30}); err != nil {
		t.Fatalf("execute: %v", err)
	}

	remaining := recorder.Entries()
	if len(remaining) != 1 || remaining[0].TargetID != "f2" {
		t.Fatalf("expected only fresh entry to remain, got %+v", remaining)
	}
}

func TestPurgeDryRunDeletesNothing(t *testing.T) {
	recorder := audit.NewMemoryRecorder()
	ctx := context.Background()

	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	entry := audit.Entry{ID: uuid.New(), ActorID: uuid.New(), Action: "CMS_PAGE_DELETE", TargetType: "page", TargetID: "p1", CreatedAt: now.AddDate(-3, 0, 0)}
	if err := recorder.Record(ctx, entry); err != nil {
		t.Fatalf("record: %v", err)
	}

	handler := NewPurgeHandler(recorder, nil)
	handler.now = func() time.Time { return now }

	if err := handler.Execute(ctx, PurgeCommand{DryRun: true}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(recorder.Entries()) != 1 {
		t.Fatalf("dry run must not delete entries")
	}
}

func TestPurgeRejectsNegativeRetention(t *testing.T) {
	handler := NewPurgeHandler(audit.NewMemoryRecorder(), nil)
	if err := handler.Execute(context.Background(), PurgeCommand{RetentionDays: -1}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestPurgeCronDefaults(t *testing.T) {
	handler := NewPurgeHandler(audit.NewMemoryRecorder(), nil)
	if handler.CronOptions().Expression != "@daily" {
		t.Fatalf("expected @daily, got %q", handler.CronOptions().Expression)
	}

	handler = NewPurgeHandler(audit.NewMemoryRecorder(), nil, PurgeWithCronExpression("@weekly"))
	if handler.CronOptions().Expression != "@weekly" {
		t.Fatalf("expected @weekly, got %q", handler.CronOptions().Expression)
	}
}
