package content_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/goliatone/go-backoffice/internal/cache"
	"github.com/goliatone/go-backoffice/internal/content"
	"github.com/goliatone/go-backoffice/internal/domain"
	"github.com/google/uuid"
)

type serviceFixture struct {
	service     *content.Service
	store       *content.MemoryEntryStore
	recorder    *audit.MemoryRecorder
	invalidator *cache.Recorder
	now         time.Time
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	fixture := &serviceFixture{
		store:       content.NewMemoryEntryStore(),
		recorder:    audit.NewMemoryRecorder(),
		invalidator: cache.NewRecorder(),
		now:         time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
	fixture.service = content.NewService(fixture.store, content.DefaultTypes(),
		content.WithClock(func() time.Time { return fixture.now }),
		content.WithAuditRecorder(fixture.recorder),
		content.WithInvalidator(fixture.invalidator),
	)
	return fixture
}

func TestCreateDraftLeavesPublishedAtEmpty(t *testing.T) {
	fixture := newServiceFixture(t)

	entry, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type:    "faq",
		Title:   "Visiting hours",
		ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.Status != string(domain.StatusDraft) {
		t.Fatalf("expected draft default, got %s", entry.Status)
	}
	if entry.PublishedAt != nil {
		t.Fatalf("draft must not carry a publish stamp, got %v", entry.PublishedAt)
	}
	if entry.Slug != "visiting-hours" {
		t.Fatalf("expected slug derived from title, got %q", entry.Slug)
	}
}

func TestCreatePublishedDerivesStamp(t *testing.T) {
	fixture := newServiceFixture(t)

	entry, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type:    "article",
		Title:   "Flu season",
		Status:  domain.StatusPublished,
		ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if entry.PublishedAt == nil || !entry.PublishedAt.Equal(fixture.now) {
		t.Fatalf("expected stamp %v, got %v", fixture.now, entry.PublishedAt)
	}

	entries := fixture.recorder.Entries()
	if len(entries) != 1 || entries[0].Action != "CMS_ARTICLE_PUBLISH" {
		t.Fatalf("expected publish audit entry, got %+v", entries)
	}
	if len(fixture.invalidator.Calls()) != 1 {
		t.Fatalf("expected one invalidation call, got %d", len(fixture.invalidator.Calls()))
	}
}

func TestCreateScheduledWithoutDateFails(t *testing.T) {
	fixture := newServiceFixture(t)

	_, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type:    "article",
		Title:   "Holiday notice",
		Status:  domain.StatusScheduled,
		ActorID: uuid.New(),
	})
	if !errors.Is(err, content.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(fixture.recorder.Entries()) != 0 {
		t.Fatalf("failed mutation must not be audited")
	}
	if len(fixture.invalidator.Calls()) != 0 {
		t.Fatalf("failed mutation must not invalidate caches")
	}
}

func TestCreateDuplicateSlugConflicts(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()

	if _, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "faq", Title: "Opening hours", Slug: "hours", ActorID: uuid.New(),
	}); err != nil {
		t.Fatalf("seed create: %v", err)
	}

	_, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "faq", Title: "Another hours page", Slug: "hours", ActorID: uuid.New(),
	})
	if !errors.Is(err, content.ErrSlugExists) {
		t.Fatalf("expected slug conflict, got %v", err)
	}

	// the same slug is free under a different type
	if _, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "page", Title: "Hours", Slug: "hours", ActorID: uuid.New(),
	}); err != nil {
		t.Fatalf("cross-type create: %v", err)
	}
}

func TestUpdateRepublishKeepsOriginalStamp(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	entry, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "article", Title: "Allergy guide", Status: domain.StatusPublished, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	original := *entry.PublishedAt

	fixture.now = fixture.now.Add(48 * time.Hour)
	draft := domain.StatusDraft
	entry, err = fixture.service.Update(ctx, "article", content.UpdateInput{
		ID: entry.ID, Status: &draft, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("unpublish: %v", err)
	}
	if entry.PublishedAt == nil || !entry.PublishedAt.Equal(original) {
		t.Fatalf("expected dormant stamp %v, got %v", original, entry.PublishedAt)
	}

	fixture.now = fixture.now.Add(24 * time.Hour)
	published := domain.StatusPublished
	entry, err = fixture.service.Update(ctx, "article", content.UpdateInput{
		ID: entry.ID, Status: &published, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("republish: %v", err)
	}
	if entry.PublishedAt == nil || !entry.PublishedAt.Equal(original) {
		t.Fatalf("republish must keep %v, got %v", original, entry.PublishedAt)
	}
}

func TestUpdateReplacesAssociations(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	entry, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "article", Title: "Nutrition basics", Tags: []string{"diet", "health"}, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(entry.Tags) != 2 {
		t.Fatalf("expected 2 tags, got %d", len(entry.Tags))
	}

	tags := []string{"wellness"}
	entry, err = fixture.service.Update(ctx, "article", content.UpdateInput{
		ID: entry.ID, Tags: &tags, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(entry.Tags) != 1 || entry.Tags[0].Label != "wellness" {
		t.Fatalf("expected replaced tag set, got %+v", entry.Tags)
	}

	stored, err := fixture.store.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(stored.Tags) != 1 || stored.Tags[0].Position != 0 {
		t.Fatalf("stored tags must be the replaced set, got %+v", stored.Tags)
	}
}

func TestUpdateAtomicityOnAssociationFailure(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	entry, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "article", Title: "Before", Tags: []string{"original"}, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	fixture.store.FailAssociations(errors.New("disk full"))
	title := "After"
	tags := []string{"replacement"}
	_, err = fixture.service.Update(ctx, "article", content.UpdateInput{
		ID: entry.ID, Title: &title, Tags: &tags, ActorID: actor,
	})
	if !errors.Is(err, content.ErrTransaction) {
		t.Fatalf("expected transaction error, got %v", err)
	}
	fixture.store.FailAssociations(nil)

	stored, err := fixture.store.GetByID(ctx, entry.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Title != "Before" || len(stored.Tags) != 1 || stored.Tags[0].Label != "original" {
		t.Fatalf("rolled-back update must leave the entry untouched, got %+v", stored)
	}
	if len(fixture.recorder.Entries()) != 1 {
		t.Fatalf("failed update must not be audited, got %d entries", len(fixture.recorder.Entries()))
	}
}

func TestAuditFailureDoesNotFailMutation(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.recorder.Fail(errors.New("audit store down"))

	entry, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type: "faq", Title: "Parking", ActorID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("create must survive audit failure: %v", err)
	}
	if _, err := fixture.store.GetByID(context.Background(), entry.ID); err != nil {
		t.Fatalf("entry must be persisted: %v", err)
	}
}

func TestInvalidationFailureDoesNotFailMutation(t *testing.T) {
	fixture := newServiceFixture(t)
	fixture.invalidator.Fail(errors.New("redis down"))

	if _, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type: "faq", Title: "Insurance cards", ActorID: uuid.New(),
	}); err != nil {
		t.Fatalf("create must survive invalidation failure: %v", err)
	}
}

func TestCreateEnforcesWordLimit(t *testing.T) {
	fixture := newServiceFixture(t)

	body := ""
	for i := 0; i < content.DefaultMaxBodyWords+1; i++ {
		body += "word "
	}

	_, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type: "article", Title: "Too long", Body: body, ActorID: uuid.New(),
	})
	if !errors.Is(err, content.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	issues := content.Issues(err)
	if len(issues) != 1 || issues[0].Field != "body" {
		t.Fatalf("expected body issue, got %+v", issues)
	}
}

func TestCreateValidatesMetadataSchema(t *testing.T) {
	fixture := newServiceFixture(t)

	_, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type:     "branch",
		Title:    "Downtown clinic",
		Metadata: map[string]any{"lat": "not-a-number"},
		ActorID:  uuid.New(),
	})
	if !errors.Is(err, content.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestUnknownTypeRejected(t *testing.T) {
	fixture := newServiceFixture(t)

	_, err := fixture.service.Create(context.Background(), content.CreateInput{
		Type: "podcast", Title: "Nope", ActorID: uuid.New(),
	})
	if !errors.Is(err, content.ErrEntryTypeUnknown) {
		t.Fatalf("expected unknown type error, got %v", err)
	}

	_, _, err = fixture.service.List(context.Background(), "podcast", content.ListOptions{})
	if !errors.Is(err, content.ErrEntryTypeUnknown) {
		t.Fatalf("expected unknown type error from list, got %v", err)
	}
}

func TestListFiltersAndPages(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	titles := []string{"Cardiology", "Dermatology", "Pediatrics"}
	for i, title := range titles {
		fixture.now = fixture.now.Add(time.Duration(i) * time.Minute)
		status := domain.StatusDraft
		if i == 1 {
			status = domain.StatusPublished
		}
		if _, err := fixture.service.Create(ctx, content.CreateInput{
			Type: "service", Title: title, Status: status, ActorID: actor,
		}); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}

	entries, total, err := fixture.service.List(ctx, "service", content.ListOptions{PageSize: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 3 || len(entries) != 2 {
		t.Fatalf("expected total 3 page of 2, got total=%d page=%d", total, len(entries))
	}
	if entries[0].Title != "Pediatrics" {
		t.Fatalf("expected newest first, got %q", entries[0].Title)
	}

	entries, total, err = fixture.service.List(ctx, "service", content.ListOptions{Status: domain.StatusPublished})
	if err != nil {
		t.Fatalf("list by status: %v", err)
	}
	if total != 1 || entries[0].Title != "Dermatology" {
		t.Fatalf("unexpected status filter result: total=%d %+v", total, entries)
	}

	entries, _, err = fixture.service.List(ctx, "service", content.ListOptions{Search: "cardio"})
	if err != nil {
		t.Fatalf("list by search: %v", err)
	}
	if len(entries) != 1 || entries[0].Title != "Cardiology" {
		t.Fatalf("unexpected search result: %+v", entries)
	}
}

func TestDeleteFreesSlugAndAudits(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	entry, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "faq", Title: "Old question", Slug: "old-question", ActorID: actor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := fixture.service.Delete(ctx, "faq", entry.ID, actor); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := fixture.service.Get(ctx, "faq", entry.ID); err == nil {
		t.Fatalf("deleted entry must not resolve")
	}

	if _, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "faq", Title: "New question", Slug: "old-question", ActorID: actor,
	}); err != nil {
		t.Fatalf("slug must be reusable after delete: %v", err)
	}

	entries := fixture.recorder.Entries()
	found := false
	for _, auditEntry := range entries {
		if auditEntry.Action == "CMS_FAQ_DELETE" && auditEntry.TargetID == entry.ID.String() {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected delete audit entry, got %+v", entries)
	}
}

func TestActivateDuePublishesScheduledEntries(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	when := fixture.now.Add(time.Hour)
	entry, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "article", Title: "Vaccination drive", Status: domain.StatusScheduled,
		PublishedAt: &when, ActorID: actor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	activated, err := fixture.service.ActivateDue(ctx, actor)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(activated) != 0 {
		t.Fatalf("entry is not due yet, got %d activated", len(activated))
	}

	fixture.now = when.Add(time.Minute)
	activated, err = fixture.service.ActivateDue(ctx, actor)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if len(activated) != 1 || activated[0].ID != entry.ID {
		t.Fatalf("expected the scheduled entry to activate, got %+v", activated)
	}
	if activated[0].Status != string(domain.StatusPublished) {
		t.Fatalf("expected published, got %s", activated[0].Status)
	}
	if activated[0].PublishedAt == nil || !activated[0].PublishedAt.Equal(when) {
		t.Fatalf("activation must keep the scheduled stamp, got %v", activated[0].PublishedAt)
	}
}

func TestPurgeRemovesEntryPermanently(t *testing.T) {
	fixture := newServiceFixture(t)
	ctx := context.Background()
	actor := uuid.New()

	entry, err := fixture.service.Create(ctx, content.CreateInput{
		Type: "form", Title: "Intake Form", ActorID: actor,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := fixture.service.Purge(ctx, "form", entry.ID, actor); err != nil {
		t.Fatalf("purge: %v", err)
	}

	if _, err := fixture.service.Get(ctx, "form", entry.ID); err == nil {
		t.Fatal("expected purged entry to be gone")
	}

	found := false
	for _, auditEntry := range fixture.recorder.Entries() {
		if auditEntry.Action == "CMS_FORM_DELETE" && auditEntry.TargetID == entry.ID.String() {
			found = true
		}
	}
	if !found {
		t.Fatal("expected purge to leave a delete audit entry")
	}
}

func TestAuditEntriesUseConfiguredIDGenerator(t *testing.T) {
	store := content.NewMemoryEntryStore()
	recorder := audit.NewMemoryRecorder()
	fixed := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	svc := content.NewService(store, content.DefaultTypes(),
		content.WithIDGenerator(func() uuid.UUID { return fixed }),
		content.WithAuditRecorder(recorder),
	)

	if _, err := svc.Create(context.Background(), content.CreateInput{
		Type: "article", Title: "Deterministic IDs", ActorID: uuid.New(),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	entries := recorder.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	if entries[0].ID != fixed {
		t.Fatalf("expected audit id from the generator, got %s", entries[0].ID)
	}
}
