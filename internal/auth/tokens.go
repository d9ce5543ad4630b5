package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenInvalid = errors.New("auth: token invalid")
	ErrTokenExpired = errors.New("auth: token expired")
	ErrNoToken      = errors.New("auth: no token presented")
)

// Claims is the session token payload. The subject carries the account ID.
type Claims struct {
	AccountID string `json:"account_id"`
	jwt.RegisteredClaims
}

// TokenService signs and validates HS256 session tokens.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

// TokenOption configures the token service.
type TokenOption func(*TokenService)

// WithTokenClock overrides the clock used for issuance and expiry.
func WithTokenClock(clock func() time.Time) TokenOption {
	return func(s *TokenService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithTokenTTL overrides the token lifetime.
func WithTokenTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// NewTokenService creates a token service with the given signing key.
func NewTokenService(signingKey, issuer string, opts ...TokenOption) *TokenService {
	service := &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        12 * time.Hour,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Issue signs a session token for the account.
func (s *TokenService) Issue(accountID uuid.UUID) (string, error) {
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		AccountID: accountID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.issuer,
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(s.signingKey)
}

// Validate parses and verifies a session token.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenUnverifiable
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// AccountID extracts the account ID from a session token.
func (s *TokenService) AccountID(tokenString string) (uuid.UUID, error) {
	claims, err := s.Validate(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(claims.AccountID)
	if err != nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return id, nil
}

// SessionCookie is the cookie the admin UI stores its token in.
const SessionCookie = "backoffice_session"

// ResolveRequest extracts the account ID from a bearer header or the
// session cookie. A request with neither yields ErrNoToken.
func (s *TokenService) ResolveRequest(r *http.Request) (uuid.UUID, error) {
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return s.AccountID(strings.TrimSpace(parts[1]))
		}
		return uuid.Nil, ErrTokenInvalid
	}
	if cookie, err := r.Cookie(SessionCookie); err == nil && cookie.Value != "" {
		return s.AccountID(cookie.Value)
	}
	return uuid.Nil, ErrNoToken
}
