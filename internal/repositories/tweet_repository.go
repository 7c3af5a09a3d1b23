package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// TweetRepository defines data access for tweets.
type TweetRepository interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error

	// List returns a page of tweet views (owner join + live like count),
	// newest first. An empty ownerID lists all tweets.
	List(ctx context.Context, ownerID string, p pagination.Params) ([]models.TweetView, int, error)
}
