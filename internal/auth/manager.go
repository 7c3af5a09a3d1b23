// Package auth issues and verifies the JWT session tokens that authenticate
// API requests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/cliptube/backend/internal/models"
)

var (
	// ErrInvalidToken indicates a token that failed signature or claim checks.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired indicates a token whose expiry has passed.
	ErrTokenExpired = errors.New("token expired")
	// ErrSessionRevoked indicates a refresh token that no longer matches the
	// one stored for the user, usually because of logout or rotation.
	ErrSessionRevoked = errors.New("session revoked")
)

// tokenKind discriminates access from refresh tokens so one can never be
// presented in place of the other.
type tokenKind string

const (
	kindAccess  tokenKind = "access"
	kindRefresh tokenKind = "refresh"
)

// RefreshTokenStore persists the single active refresh token per user.
// Issuing a new token overwrites the previous one, so at most one refresh
// token is valid per account at a time.
type RefreshTokenStore interface {
	SetRefreshToken(ctx context.Context, userID string, token *string) error
	FindByID(ctx context.Context, id string) (models.User, error)
}

type sessionClaims struct {
	Kind tokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// Manager signs and verifies session tokens with a shared HMAC secret and
// tracks the active refresh token per user through a RefreshTokenStore.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	store RefreshTokenStore

	// NowFunc overrides the clock in tests.
	NowFunc func() time.Time
}

// NewManager constructs a Manager that issues tokens with the provided TTLs.
func NewManager(secret string, accessTTL, refreshTTL time.Duration, store RefreshTokenStore) *Manager {
	if secret == "" {
		panic("auth: signing secret must not be empty")
	}
	if store == nil {
		panic("auth: refresh token store must not be nil")
	}
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		store:      store,
	}
}

// Issue creates a new access and refresh token pair for the user and records
// the refresh token as the user's single active session.
func (m *Manager) Issue(ctx context.Context, userID string) (models.SessionTokens, error) {
	if userID == "" {
		return models.SessionTokens{}, errors.New("user id must be provided")
	}

	now := m.now()

	access, accessExp, err := m.sign(userID, kindAccess, now, m.accessTTL)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, refreshExp, err := m.sign(userID, kindRefresh, now, m.refreshTTL)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := m.store.SetRefreshToken(ctx, userID, &refresh); err != nil {
		return models.SessionTokens{}, fmt.Errorf("store refresh token: %w", err)
	}

	return models.SessionTokens{
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify checks an access token and returns the authenticated user id.
func (m *Manager) Verify(token string) (string, error) {
	claims, err := m.parse(token, kindAccess)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// Refresh exchanges a refresh token for a new token pair. The presented token
// must both verify and match the stored active token for its user; the new
// pair rotates the stored token so the old one cannot be replayed.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error) {
	claims, err := m.parse(refreshToken, kindRefresh)
	if err != nil {
		return models.SessionTokens{}, err
	}

	user, err := m.store.FindByID(ctx, claims.Subject)
	if err != nil {
		return models.SessionTokens{}, fmt.Errorf("load session user: %w", err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return models.SessionTokens{}, ErrSessionRevoked
	}

	return m.Issue(ctx, claims.Subject)
}

// Revoke clears the user's active refresh token, invalidating the session.
func (m *Manager) Revoke(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	if err := m.store.SetRefreshToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

func (m *Manager) sign(userID string, kind tokenKind, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := sessionClaims{
		Kind: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *Manager) parse(token string, want tokenKind) (*sessionClaims, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.Kind != want || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (m *Manager) now() time.Time {
	if m.NowFunc != nil {
		return m.NowFunc()
	}
	return time.Now().UTC()
}
