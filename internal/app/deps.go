package app

import (
	"context"
	"time"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/config"
	"github.com/cliptube/backend/internal/db"
	"github.com/cliptube/backend/internal/engagement"
	"github.com/cliptube/backend/internal/handlers"
	"github.com/cliptube/backend/internal/middleware"
	"github.com/cliptube/backend/internal/repositories"
	"github.com/cliptube/backend/internal/storage"
)

// buildDependencies wires the concrete repositories, togglers, and services
// used by the HTTP handlers. The media store is optional: without a bucket
// configured, upload endpoints report that uploads are not configured.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)

	likeToggler := &engagement.LikeToggler{
		Edges: likes,
		Targets: repositories.EntityTargetResolver{
			Videos:   videos,
			Comments: comments,
			Tweets:   tweets,
		},
	}
	subscriptionToggler := &engagement.SubscriptionToggler{
		Edges:    subscriptions,
		Channels: users,
	}

	deps := handlers.Dependencies{
		Users:         users,
		Sessions:      auth.NewManager(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL, users),
		Videos:        videos,
		Comments:      comments,
		Tweets:        tweets,
		Playlists:     playlists,
		Likes:         likeToggler,
		LikedLists:    likes,
		Subscriptions: subscriptionToggler,
		Channels:      subscriptions,
		AuthLimiter:   middleware.NewKeyedRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}

	if cfg.ObjectStore.Bucket != "" {
		media, err := storage.NewS3MediaStore(ctx, cfg.ObjectStore)
		if err != nil {
			return handlers.Dependencies{}, err
		}
		deps.Media = media
	}

	return deps, nil
}
