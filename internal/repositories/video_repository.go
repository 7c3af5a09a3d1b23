package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// VideoFilter restricts and orders a video listing.
type VideoFilter struct {
	// Query is matched case-insensitively as a substring of title or
	// description. Empty means no text filter.
	Query string
	// OwnerID restricts the listing to one owner's videos by exact match.
	OwnerID string
	// SortBy is one of "createdAt", "title", "duration". Unknown values fall
	// back to creation time.
	SortBy string
	// Ascending flips the sort direction; default is descending.
	Ascending bool
}

// VideoRepository defines data access for videos and their read projections.
type VideoRepository interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error

	// List returns a page of denormalized video views plus the total match
	// count. An empty page is a successful result.
	List(ctx context.Context, filter VideoFilter, p pagination.Params) ([]models.VideoView, int, error)
	// View builds the single-video projection: owner join, live like count,
	// and the viewer-relative liked flag (false for anonymous viewers).
	View(ctx context.Context, id, viewerID string) (models.VideoView, error)
}
