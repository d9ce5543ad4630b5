package backoffice_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	backoffice "github.com/goliatone/go-backoffice"
	"github.com/goliatone/go-backoffice/internal/audit"
	"github.com/goliatone/go-backoffice/internal/content"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestModule_AdminAPIWithBunStorage(t *testing.T) {
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
	applyModuleMigrations(t, bunDB)

	cfg := backoffice.DefaultConfig()
	cfg.Auth.SigningKey = "integration-secret"

	module, err := backoffice.New(cfg, backoffice.WithDB(bunDB))
	if err != nil {
		t.Fatalf("new backoffice module: %v", err)
	}
	t.Cleanup(func() {
		_ = module.Close()
	})

	editorID := seedAccount(t, bunDB, "editor@clinic.test", "content_editor")
	token, err := module.Tokens().Issue(editorID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	mux := http.NewServeMux()
	if err := module.RegisterRoutes(mux); err != nil {
		t.Fatalf("register routes: %v", err)
	}

	rec := doAuthorizedJSON(t, mux, token, http.MethodPost, "/admin/api/faqs", map[string]any{
		"title":  "Visiting Hours",
		"body":   "Our clinic is open weekdays from eight until six.",
		"status": "published",
		"tags":   []string{"general"},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 creating faq, got %d: %s", rec.Code, rec.Body.String())
	}

	var created content.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created entry: %v", err)
	}
	if created.Slug != "visiting-hours" {
		t.Fatalf("expected derived slug visiting-hours, got %q", created.Slug)
	}
	if created.PublishedAt == nil {
		t.Fatal("expected published entry to carry a publication date")
	}
	if len(created.Tags) != 1 || created.Tags[0].Label != "general" {
		t.Fatalf("expected one tag to round trip, got %+v", created.Tags)
	}

	rec = doAuthorizedJSON(t, mux, token, http.MethodPost, "/admin/api/faqs", map[string]any{
		"title": "Different Title",
		"slug":  "visiting-hours",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate slug, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doAuthorizedJSON(t, mux, token, http.MethodGet, "/admin/api/faqs/"+created.ID.String(), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 fetching faq, got %d: %s", rec.Code, rec.Body.String())
	}

	entries, err := module.Audit().List(ctx, audit.ListFilter{TargetType: "faq"})
	if err != nil {
		t.Fatalf("list audit entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(entries))
	}
	if entries[0].Action != "CMS_FAQ_PUBLISH" {
		t.Fatalf("expected publish action, got %q", entries[0].Action)
	}
	if entries[0].ActorID != editorID {
		t.Fatalf("expected actor %s, got %s", editorID, entries[0].ActorID)
	}

	rec = doAuthorizedJSON(t, mux, "", http.MethodGet, "/admin/api/faqs", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}
}

func seedAccount(t *testing.T, db *bun.DB, email string, roles ...string) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	account := &struct {
		bun.BaseModel `bun:"table:accounts"`

		ID          uuid.UUID `bun:",pk,type:uuid"`
		Email       string    `bun:"email"`
		DisplayName string    `bun:"display_name"`
		Active      bool      `bun:"active"`
	}{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Integration Account",
		Active:      true,
	}
	if _, err := db.NewInsert().Model(account).Exec(ctx); err != nil {
		t.Fatalf("insert account: %v", err)
	}

	for _, role := range roles {
		membership := &struct {
			bun.BaseModel `bun:"table:account_roles"`

			ID        uuid.UUID `bun:",pk,type:uuid"`
			AccountID uuid.UUID `bun:"account_id,type:uuid"`
			RoleID    string    `bun:"role_id"`
		}{
			ID:        uuid.New(),
			AccountID: account.ID,
			RoleID:    role,
		}
		if _, err := db.NewInsert().Model(membership).Exec(ctx); err != nil {
			t.Fatalf("insert account role %s: %v", role, err)
		}
	}

	return account.ID
}

func doAuthorizedJSON(t *testing.T, handler http.Handler, token, method, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func applyModuleMigrations(t *testing.T, db *bun.DB) {
	t.Helper()
	ctx := context.Background()
	migrations := backoffice.GetMigrationsFS()

	entries, err := fs.ReadDir(migrations, "data/sql/migrations")
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		raw, err := fs.ReadFile(migrations, "data/sql/migrations/"+name)
		if err != nil {
			t.Fatalf("read migration %s: %v", name, err)
		}
		statement := strings.ReplaceAll(string(raw), "::jsonb", "")
		if _, err := db.ExecContext(ctx, statement); err != nil {
			t.Fatalf("exec migration %s: %v", name, err)
		}
	}
}
