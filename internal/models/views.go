package models

import "time"

// The view types below are read-time projections: counts and joined summaries
// are computed over the current edge set on every read and are never stored on
// the entities themselves.

// OwnerSummary is the trimmed public profile attached to listed content.
// Credential fields are never part of this projection.
type OwnerSummary struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"fullName"`
	AvatarURL string `json:"avatarUrl"`
}

// VideoView is a video joined with its owner profile and like aggregate.
// Owner is nil when the owning account no longer resolves; the listing still
// succeeds.
type VideoView struct {
	ID           string        `json:"id"`
	OwnerID      string        `json:"ownerId"`
	VideoFileURL string        `json:"videoFileUrl"`
	ThumbnailURL string        `json:"thumbnailUrl"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Duration     float64       `json:"duration"`
	IsPublished  bool          `json:"isPublished"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
	Owner        *OwnerSummary `json:"owner,omitempty"`
	LikeCount    int64         `json:"likeCount"`
	IsLiked      bool          `json:"isLiked"`
}

// CommentView is a comment joined with its owner profile and like count.
type CommentView struct {
	ID        string        `json:"id"`
	VideoID   string        `json:"videoId"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Owner     *OwnerSummary `json:"owner,omitempty"`
	LikeCount int64         `json:"likeCount"`
}

// TweetView is a tweet joined with its owner profile and like count.
type TweetView struct {
	ID        string        `json:"id"`
	Content   string        `json:"content"`
	CreatedAt time.Time     `json:"createdAt"`
	Owner     *OwnerSummary `json:"owner,omitempty"`
	LikeCount int64         `json:"likeCount"`
}

// ChannelProfile is the viewer-relative projection of a user's channel page.
type ChannelProfile struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	FullName          string    `json:"fullName"`
	Email             string    `json:"email"`
	AvatarURL         string    `json:"avatarUrl"`
	CoverImageURL     string    `json:"coverImageUrl"`
	CreatedAt         time.Time `json:"createdAt"`
	SubscriberCount   int64     `json:"subscriberCount"`
	SubscribedToCount int64     `json:"subscribedToCount"`
	IsSubscribed      bool      `json:"isSubscribed"`
}

// SubscribedChannel pairs a subscription edge with the joined channel profile.
type SubscribedChannel struct {
	SubscriptionID string        `json:"subscriptionId"`
	SubscribedAt   time.Time     `json:"subscribedAt"`
	Channel        *OwnerSummary `json:"channel,omitempty"`
}

// VideoSummary is the trimmed video projection attached to liked-video rows.
type VideoSummary struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	VideoFileURL string `json:"videoFileUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// LikedVideo pairs a like edge with the joined video summary. Video is nil
// when the target has since been deleted; SnapshotTitle is the fallback.
type LikedVideo struct {
	LikeID        string        `json:"likeId"`
	LikedAt       time.Time     `json:"likedAt"`
	SnapshotTitle string        `json:"snapshotTitle,omitempty"`
	Video         *VideoSummary `json:"video,omitempty"`
}
