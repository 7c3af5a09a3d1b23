package handlers

import (
	"context"
	"io"

	"github.com/cliptube/backend/internal/engagement"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
	"github.com/cliptube/backend/internal/repositories"
)

// UserStore captures the persistence operations required by the auth and
// user handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	Update(ctx context.Context, user models.User) error
	ChannelProfile(ctx context.Context, username, viewerID string) (models.ChannelProfile, error)
	AppendWatchHistory(ctx context.Context, userID, videoID string) error
	WatchHistory(ctx context.Context, userID string, p pagination.Params) ([]models.VideoView, int, error)
}

// SessionManager issues, verifies, and refreshes authentication tokens.
type SessionManager interface {
	Issue(ctx context.Context, userID string) (models.SessionTokens, error)
	Verify(token string) (string, error)
	Refresh(ctx context.Context, refreshToken string) (models.SessionTokens, error)
	Revoke(ctx context.Context, userID string) error
}

// VideoStore captures persistence for videos and their read projections.
type VideoStore interface {
	Create(ctx context.Context, video models.Video) error
	FindByID(ctx context.Context, id string) (models.Video, error)
	Update(ctx context.Context, video models.Video) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter repositories.VideoFilter, p pagination.Params) ([]models.VideoView, int, error)
	View(ctx context.Context, id, viewerID string) (models.VideoView, error)
}

// CommentStore captures persistence for video comments.
type CommentStore interface {
	Create(ctx context.Context, comment models.Comment) error
	FindByID(ctx context.Context, id string) (models.Comment, error)
	Update(ctx context.Context, comment models.Comment) error
	Delete(ctx context.Context, id string) error
	ListForVideo(ctx context.Context, videoID string, p pagination.Params) ([]models.CommentView, int, error)
}

// TweetStore captures persistence for tweets.
type TweetStore interface {
	Create(ctx context.Context, tweet models.Tweet) error
	FindByID(ctx context.Context, id string) (models.Tweet, error)
	Update(ctx context.Context, tweet models.Tweet) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, ownerID string, p pagination.Params) ([]models.TweetView, int, error)
}

// PlaylistStore captures persistence for playlists and their membership.
type PlaylistStore interface {
	Create(ctx context.Context, playlist models.Playlist) error
	FindByID(ctx context.Context, id string) (models.Playlist, error)
	ListForOwner(ctx context.Context, ownerID string, p pagination.Params) ([]models.Playlist, int, error)
	Update(ctx context.Context, playlist models.Playlist) error
	Delete(ctx context.Context, id string) error
	AddVideo(ctx context.Context, playlistID, videoID string) error
	RemoveVideo(ctx context.Context, playlistID, videoID string) error
}

// LikeService flips like edges.
type LikeService interface {
	Toggle(ctx context.Context, actorID string, target models.LikeTarget) (engagement.LikeResult, error)
}

// LikedVideoLister pages through an actor's liked videos.
type LikedVideoLister interface {
	ListLikedVideos(ctx context.Context, actorID string, p pagination.Params) ([]models.LikedVideo, int, error)
}

// SubscriptionService flips subscription edges.
type SubscriptionService interface {
	Toggle(ctx context.Context, subscriberID, channelID string) (engagement.SubscriptionResult, error)
}

// ChannelLister pages through a subscriber's channels.
type ChannelLister interface {
	ListChannels(ctx context.Context, subscriberID string, p pagination.Params) ([]models.SubscribedChannel, int, error)
}

// MediaStore uploads media assets and returns their public URLs.
type MediaStore interface {
	Save(ctx context.Context, folder, filename string, r io.Reader) (string, error)
}
