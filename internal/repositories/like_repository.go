package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// LikeRepository is the edge store for like relationships. The storage layer
// enforces uniqueness of (actor, target kind, target id): racing creates for
// the same triple cannot both succeed.
type LikeRepository interface {
	// Create persists a new like edge; a duplicate triple yields ErrConflict.
	Create(ctx context.Context, like models.Like) error
	// Find returns the edge for the exact (actor, target) pair, or ErrNotFound.
	Find(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error)
	// DeleteMatching atomically removes the edge for the pair and returns it;
	// ErrNotFound when no edge existed.
	DeleteMatching(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error)
	// CountForTarget counts the edges referencing a target, computed over the
	// current edge set at call time.
	CountForTarget(ctx context.Context, target models.LikeTarget) (int64, error)

	// ListLikedVideos returns a page of the actor's video likes joined with
	// video summaries, newest like first. Likes whose video has since been
	// deleted are kept and degrade to their stored snapshot title.
	ListLikedVideos(ctx context.Context, actorID string, p pagination.Params) ([]models.LikedVideo, int, error)
}
