package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

type inMemoryTokenStore struct {
	users map[string]*models.User
}

func newInMemoryTokenStore(ids ...string) *inMemoryTokenStore {
	users := make(map[string]*models.User, len(ids))
	for _, id := range ids {
		users[id] = &models.User{ID: id}
	}
	return &inMemoryTokenStore{users: users}
}

func (s *inMemoryTokenStore) SetRefreshToken(_ context.Context, userID string, token *string) error {
	user, ok := s.users[userID]
	if !ok {
		return repositories.ErrNotFound
	}
	user.RefreshToken = token
	return nil
}

func (s *inMemoryTokenStore) FindByID(_ context.Context, id string) (models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return models.User{}, repositories.ErrNotFound
	}
	return *user, nil
}

func newTestManager(store RefreshTokenStore) *Manager {
	return NewManager("test-secret", 15*time.Minute, 7*24*time.Hour, store)
}

func TestIssueAndVerify(t *testing.T) {
	store := newInMemoryTokenStore("user-1")
	manager := newTestManager(store)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if tokens.AccessToken == tokens.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	userID, err := manager.Verify(tokens.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected user-1, got %q", userID)
	}

	stored := store.users["user-1"].RefreshToken
	if stored == nil || *stored != tokens.RefreshToken {
		t.Fatal("expected the refresh token to be persisted on the user")
	}
}

func TestVerifyRejectsRefreshToken(t *testing.T) {
	manager := newTestManager(newInMemoryTokenStore("user-1"))

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if _, err := manager.Verify(tokens.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for a refresh token, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	manager := newTestManager(newInMemoryTokenStore("user-1"))

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	other := NewManager("different-secret", 15*time.Minute, 7*24*time.Hour, newInMemoryTokenStore("user-1"))
	if _, err := other.Verify(tokens.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestVerifyExpiredToken(t *testing.T) {
	manager := newTestManager(newInMemoryTokenStore("user-1"))
	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager.NowFunc = func() time.Time { return issuedAt }

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	manager.NowFunc = func() time.Time { return issuedAt.Add(16 * time.Minute) }
	if _, err := manager.Verify(tokens.AccessToken); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	store := newInMemoryTokenStore("user-1")
	manager := newTestManager(store)
	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	manager.NowFunc = func() time.Time { return issuedAt }

	first, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Advance the clock so the rotated token has different claims.
	manager.NowFunc = func() time.Time { return issuedAt.Add(time.Hour) }

	second, err := manager.Refresh(context.Background(), first.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Fatal("expected refresh to rotate the refresh token")
	}

	// The old token no longer matches the stored one.
	if _, err := manager.Refresh(context.Background(), first.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked for replayed token, got %v", err)
	}

	// The rotated token still works.
	if _, err := manager.Refresh(context.Background(), second.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestRevokeInvalidatesSession(t *testing.T) {
	store := newInMemoryTokenStore("user-1")
	manager := newTestManager(store)

	tokens, err := manager.Issue(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	if err := manager.Revoke(context.Background(), "user-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}

	if _, err := manager.Refresh(context.Background(), tokens.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked after revoke, got %v", err)
	}
}

func TestActorContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	if got := ActorID(ctx); got != "" {
		t.Fatalf("expected empty actor on bare context, got %q", got)
	}

	ctx = WithActorID(ctx, "user-9")
	if got := ActorID(ctx); got != "user-9" {
		t.Fatalf("expected user-9, got %q", got)
	}
}
