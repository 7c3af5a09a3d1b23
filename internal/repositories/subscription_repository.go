package repositories

import (
	"context"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/pagination"
)

// SubscriptionRepository is the edge store for channel subscriptions. The
// storage layer enforces at most one edge per (subscriber, channel) pair.
type SubscriptionRepository interface {
	// Create persists a new subscription edge; a duplicate pair yields ErrConflict.
	Create(ctx context.Context, sub models.Subscription) error
	// Find returns the edge for the exact pair, or ErrNotFound.
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	// DeleteMatching atomically removes the edge for the pair and returns it;
	// ErrNotFound when no edge existed.
	DeleteMatching(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)

	// ListChannels returns a page of the subscriber's channels joined with
	// trimmed channel profiles, newest subscription first.
	ListChannels(ctx context.Context, subscriberID string, p pagination.Params) ([]models.SubscribedChannel, int, error)
}
