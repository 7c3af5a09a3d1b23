// Package engagement implements the relationship toggle engine: idempotent
// flipping of like and subscription edges that converges to a single
// consistent state under concurrent callers.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// ToggleState reports which side of the flip a toggle landed on.
type ToggleState string

const (
	// StateAdded means the toggle resulted in the edge existing.
	StateAdded ToggleState = "added"
	// StateRemoved means the toggle resulted in the edge being absent.
	StateRemoved ToggleState = "removed"
)

// toggleAttempts bounds the delete/create loop. Each retry only happens when
// a concurrent toggler flipped the edge between our two statements, so more
// than a couple of laps means something is wrong with the store.
const toggleAttempts = 3

var (
	// ErrActorRequired indicates a toggle was attempted without an actor.
	ErrActorRequired = errors.New("toggle requires an actor")
	// ErrNoConvergence indicates repeated interleaved toggles prevented the
	// engine from settling on a state.
	ErrNoConvergence = errors.New("toggle did not converge")
)

// LikeEdgeStore is the slice of the like repository the toggler needs.
type LikeEdgeStore interface {
	Create(ctx context.Context, like models.Like) error
	Find(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error)
	DeleteMatching(ctx context.Context, actorID string, target models.LikeTarget) (models.Like, error)
}

// TargetResolver verifies a like target exists and returns the display title
// or content captured on the edge as snapshot metadata. A missing target
// surfaces repositories.ErrNotFound.
type TargetResolver interface {
	ResolveTarget(ctx context.Context, target models.LikeTarget) (string, error)
}

// LikeResult is the outcome of a like toggle.
type LikeResult struct {
	State ToggleState `json:"state"`
	Edge  models.Like `json:"-"`
}

// LikeToggler flips like edges. Toggling against one's own content is
// permitted.
type LikeToggler struct {
	Edges   LikeEdgeStore
	Targets TargetResolver
	NowFunc func() time.Time
	NewID   func() string
}

// Toggle atomically flips the (actor, target) like edge and reports the
// resulting state.
//
// The sequence is delete-if-exists followed by create. The two statements are
// not wrapped in a cross-operation transaction, so two concurrent togglers can
// both observe "absent" and race the create; the storage uniqueness constraint
// lets only one win and the loser converges by adopting the existing edge.
// A conflict is therefore never surfaced to the caller.
func (t *LikeToggler) Toggle(ctx context.Context, actorID string, target models.LikeTarget) (LikeResult, error) {
	if actorID == "" {
		return LikeResult{}, ErrActorRequired
	}

	snapshot, err := t.Targets.ResolveTarget(ctx, target)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return LikeResult{}, fmt.Errorf("%s %s: %w", target.Kind, target.ID, repositories.ErrNotFound)
		}
		return LikeResult{}, fmt.Errorf("resolve like target: %w", err)
	}

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		removed, err := t.Edges.DeleteMatching(ctx, actorID, target)
		if err == nil {
			return LikeResult{State: StateRemoved, Edge: removed}, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return LikeResult{}, fmt.Errorf("delete like edge: %w", err)
		}

		like := models.Like{
			ID:            t.newID(),
			ActorID:       actorID,
			Target:        target,
			SnapshotTitle: snapshot,
			CreatedAt:     t.now(),
		}

		err = t.Edges.Create(ctx, like)
		if err == nil {
			return LikeResult{State: StateAdded, Edge: like}, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return LikeResult{}, fmt.Errorf("create like edge: %w", err)
		}

		// A concurrent toggle added the edge between our delete and create.
		// Converge on the winner's edge instead of surfacing the conflict.
		existing, ferr := t.Edges.Find(ctx, actorID, target)
		if ferr == nil {
			return LikeResult{State: StateAdded, Edge: existing}, nil
		}
		if !errors.Is(ferr, repositories.ErrNotFound) {
			return LikeResult{}, fmt.Errorf("find like edge after conflict: %w", ferr)
		}
		// The racing edge was toggled away again before we could read it;
		// start over.
	}

	return LikeResult{}, ErrNoConvergence
}

func (t *LikeToggler) now() time.Time {
	if t.NowFunc != nil {
		return t.NowFunc()
	}
	return time.Now().UTC()
}

func (t *LikeToggler) newID() string {
	if t.NewID != nil {
		return t.NewID()
	}
	return uuid.NewString()
}

// SubscriptionEdgeStore is the slice of the subscription repository the
// toggler needs.
type SubscriptionEdgeStore interface {
	Create(ctx context.Context, sub models.Subscription) error
	Find(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
	DeleteMatching(ctx context.Context, subscriberID, channelID string) (models.Subscription, error)
}

// ChannelResolver verifies a channel account exists. A missing channel
// surfaces repositories.ErrNotFound.
type ChannelResolver interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// SubscriptionResult is the outcome of a subscription toggle.
type SubscriptionResult struct {
	State ToggleState         `json:"state"`
	Edge  models.Subscription `json:"-"`
}

// SubscriptionToggler flips subscription edges with the same convergence
// policy as LikeToggler. Subscribing to one's own channel is permitted.
type SubscriptionToggler struct {
	Edges    SubscriptionEdgeStore
	Channels ChannelResolver
	NowFunc  func() time.Time
	NewID    func() string
}

// Toggle atomically flips the (subscriber, channel) edge and reports the
// resulting state. See LikeToggler.Toggle for the race semantics.
func (t *SubscriptionToggler) Toggle(ctx context.Context, subscriberID, channelID string) (SubscriptionResult, error) {
	if subscriberID == "" {
		return SubscriptionResult{}, ErrActorRequired
	}

	if _, err := t.Channels.FindByID(ctx, channelID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return SubscriptionResult{}, fmt.Errorf("channel %s: %w", channelID, repositories.ErrNotFound)
		}
		return SubscriptionResult{}, fmt.Errorf("resolve channel: %w", err)
	}

	for attempt := 0; attempt < toggleAttempts; attempt++ {
		removed, err := t.Edges.DeleteMatching(ctx, subscriberID, channelID)
		if err == nil {
			return SubscriptionResult{State: StateRemoved, Edge: removed}, nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return SubscriptionResult{}, fmt.Errorf("delete subscription edge: %w", err)
		}

		sub := models.Subscription{
			ID:           t.newID(),
			SubscriberID: subscriberID,
			ChannelID:    channelID,
			CreatedAt:    t.now(),
		}

		err = t.Edges.Create(ctx, sub)
		if err == nil {
			return SubscriptionResult{State: StateAdded, Edge: sub}, nil
		}
		if !errors.Is(err, repositories.ErrConflict) {
			return SubscriptionResult{}, fmt.Errorf("create subscription edge: %w", err)
		}

		existing, ferr := t.Edges.Find(ctx, subscriberID, channelID)
		if ferr == nil {
			return SubscriptionResult{State: StateAdded, Edge: existing}, nil
		}
		if !errors.Is(ferr, repositories.ErrNotFound) {
			return SubscriptionResult{}, fmt.Errorf("find subscription edge after conflict: %w", ferr)
		}
	}

	return SubscriptionResult{}, ErrNoConvergence
}

func (t *SubscriptionToggler) now() time.Time {
	if t.NowFunc != nil {
		return t.NowFunc()
	}
	return time.Now().UTC()
}

func (t *SubscriptionToggler) newID() string {
	if t.NewID != nil {
		return t.NewID()
	}
	return uuid.NewString()
}
