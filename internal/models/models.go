package models

import (
	"errors"
	"fmt"
	"time"
)

// User represents an account on the platform. A user is also a channel that
// other users can subscribe to.
type User struct {
	ID            string
	Username      string
	Email         string
	FullName      string
	AvatarURL     string
	CoverImageURL string
	Password      string
	RefreshToken  *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Video is a published piece of media owned by a single user.
type Video struct {
	ID           string
	OwnerID      string
	VideoFileURL string
	ThumbnailURL string
	Title        string
	Description  string
	Duration     float64
	IsPublished  bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Comment is a text reply attached to a video.
type Comment struct {
	ID        string
	OwnerID   string
	VideoID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Tweet is a short standalone text post.
type Tweet struct {
	ID        string
	OwnerID   string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Playlist is an ordered set of video references. Adding a video that is
// already present is a no-op, never a duplicate.
type Playlist struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	VideoIDs    []string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TargetKind discriminates which entity type a like edge references.
type TargetKind string

const (
	TargetVideo   TargetKind = "video"
	TargetComment TargetKind = "comment"
	TargetTweet   TargetKind = "tweet"
)

// ErrInvalidTargetKind indicates an unrecognized like target discriminator.
var ErrInvalidTargetKind = errors.New("invalid like target kind")

// LikeTarget is the tagged (kind, id) pair a like edge points at. Exactly one
// kind is ever populated; construct values through NewLikeTarget.
type LikeTarget struct {
	Kind TargetKind
	ID   string
}

// NewLikeTarget validates the discriminator and returns the tagged pair.
func NewLikeTarget(kind TargetKind, id string) (LikeTarget, error) {
	switch kind {
	case TargetVideo, TargetComment, TargetTweet:
	default:
		return LikeTarget{}, fmt.Errorf("%w: %q", ErrInvalidTargetKind, kind)
	}
	if id == "" {
		return LikeTarget{}, errors.New("like target id must not be empty")
	}
	return LikeTarget{Kind: kind, ID: id}, nil
}

// Like is an existence-only edge from an actor to a target entity. The
// presence of the row is the "liked" state; there is no flag anywhere else.
// SnapshotTitle preserves the liked object's title or content at like time as
// soft fallback metadata and carries no invariant.
type Like struct {
	ID            string
	ActorID       string
	Target        LikeTarget
	SnapshotTitle string
	CreatedAt     time.Time
}

// Subscription is an existence-only edge from a subscriber to a channel. At
// most one row may exist per (subscriber, channel) pair.
type Subscription struct {
	ID           string
	SubscriberID string
	ChannelID    string
	CreatedAt    time.Time
}

// SessionTokens groups the bearer credentials issued to authenticated users.
type SessionTokens struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}
