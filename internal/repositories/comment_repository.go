package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// CommentRepository defines data access for video comments.
type CommentRepository interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error

	// ListForVideo returns a page of comment views (owner join + live like
	// count) for one video, newest first, plus the total comment count.
	ListForVideo(ctx context.Context, videoID string, p pagination.Params) ([]models.CommentView, int, error)
}
