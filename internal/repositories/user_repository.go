package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// UserRepository defines the data access contract for user accounts,
// including the channel-profile and watch-history projections.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	// FindByLogin resolves a user by username or email, whichever matches.
	FindByLogin(ctx context.Context, login string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	// SetRefreshToken replaces the user's current refresh token; nil clears it.
	SetRefreshToken(ctx context.Context, userID string, token *string) error

	// ChannelProfile builds the viewer-relative channel projection: subscriber
	// counts computed over the current subscription edges plus an isSubscribed
	// flag for the viewer. An empty viewerID means anonymous (flag false).
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)

	AppendWatchHistory(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.VideoView, int, error)
}
