package app

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cliptube/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		JWTSecret: "test-secret",
		ObjectStore: config.ObjectStoreConfig{
			Bucket:   "test-bucket",
			Endpoint: "http://localhost:9000",
			Region:   "us-east-1",
		},
	}

	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	deps, err := buildDependencies(context.Background(), fakePool{}, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Sessions == nil {
		t.Fatal("expected session manager to be configured")
	}
	if deps.Videos == nil || deps.Comments == nil || deps.Tweets == nil || deps.Playlists == nil {
		t.Fatal("expected content repositories to be configured")
	}
	if deps.Likes == nil || deps.Subscriptions == nil {
		t.Fatal("expected togglers to be configured")
	}
	if deps.LikedLists == nil || deps.Channels == nil {
		t.Fatal("expected listing collaborators to be configured")
	}
	if deps.Media == nil {
		t.Fatal("expected media store to be configured")
	}
	if deps.AuthLimiter == nil {
		t.Fatal("expected auth rate limiter to be configured")
	}
}

func TestBuildDependenciesWithoutBucket(t *testing.T) {
	deps, err := buildDependencies(context.Background(), fakePool{}, config.Config{JWTSecret: "test-secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deps.Media != nil {
		t.Fatal("expected media store to be omitted without a bucket")
	}
}
