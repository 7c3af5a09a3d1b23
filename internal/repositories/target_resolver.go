package repositories

import (
	"context"
	"fmt"

	"github.com/cliptube/backend/internal/models"
)

// EntityTargetResolver verifies like targets against the entity stores and
// returns the title or content captured on the edge as snapshot metadata.
type EntityTargetResolver struct {
	Videos   VideoRepository
	Comments CommentRepository
	Tweets   TweetRepository
}

// ResolveTarget looks up the target entity for its claimed kind. A missing
// entity surfaces ErrNotFound.
func (r EntityTargetResolver) ResolveTarget(ctx context.Context, target models.LikeTarget) (string, error) {
	switch target.Kind {
	case models.TargetVideo:
		video, err := r.Videos.FindByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		return video.Title, nil
	case models.TargetComment:
		comment, err := r.Comments.FindByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		return comment.Content, nil
	case models.TargetTweet:
		tweet, err := r.Tweets.FindByID(ctx, target.ID)
		if err != nil {
			return "", err
		}
		return tweet.Content, nil
	default:
		return "", fmt.Errorf("%w: %q", models.ErrInvalidTargetKind, target.Kind)
	}
}
