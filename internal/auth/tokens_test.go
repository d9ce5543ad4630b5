package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenRoundTrip(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	service := NewTokenService("secret", "backoffice",
		WithTokenClock(func() time.Time { return now }))

	accountID := uuid.New()
	token, err := service.Issue(accountID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resolved, err := service.AccountID(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if resolved != accountID {
		t.Fatalf("expected %s got %s", accountID, resolved)
	}
}

func TestTokenExpiry(t *testing.T) {
	now := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	service := NewTokenService("secret", "backoffice",
		WithTokenClock(clock), WithTokenTTL(time.Hour))

	token, err := service.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if _, err := service.AccountID(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestTokenWrongKeyRejected(t *testing.T) {
	issuer := NewTokenService("secret-a", "backoffice")
	validator := NewTokenService("secret-b", "backoffice")

	token, err := issuer.Issue(uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := validator.AccountID(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected invalid token, got %v", err)
	}
}

func TestResolveRequestSources(t *testing.T) {
	service := NewTokenService("secret", "backoffice")
	accountID := uuid.New()
	token, err := service.Issue(accountID)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	bearer := httptest.NewRequest("GET", "/admin/api/faqs", nil)
	bearer.Header.Set("Authorization", "Bearer "+token)
	if resolved, err := service.ResolveRequest(bearer); err != nil || resolved != accountID {
		t.Fatalf("bearer resolve failed: %v %s", err, resolved)
	}

	cookie := httptest.NewRequest("GET", "/admin/api/faqs", nil)
	cookie.AddCookie(&http.Cookie{Name: SessionCookie, Value: token})
	if resolved, err := service.ResolveRequest(cookie); err != nil || resolved != accountID {
		t.Fatalf("cookie resolve failed: %v %s", err, resolved)
	}

	bare := httptest.NewRequest("GET", "/admin/api/faqs", nil)
	if _, err := service.ResolveRequest(bare); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}

	malformed := httptest.NewRequest("GET", "/admin/api/faqs", nil)
	malformed.Header.Set("Authorization", "Token abc")
	if _, err := service.ResolveRequest(malformed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}
