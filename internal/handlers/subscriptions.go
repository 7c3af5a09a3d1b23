package handlers

import (
	"errors"
	"net/http"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/engagement"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/repositories"
)

// SubscriptionHandler implements subscription toggle and listing endpoints.
type SubscriptionHandler struct {
	Subscriptions SubscriptionService
	Channels      ChannelLister
}

// Toggle handles POST /api/v1/subscriptions/{channelId} requests.
func (h SubscriptionHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	channelID := r.PathValue("channelId")
	result, err := h.Subscriptions.Toggle(ctx, actorID, channelID)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "channel not found"})
		case errors.Is(err, engagement.ErrActorRequired):
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		default:
			logging.FromContext(ctx).Error("toggle subscription", "error", err, "channelId", channelID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle subscription"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, toggleResponse{State: result.State})
}

// List handles GET /api/v1/subscriptions requests, listing the channels the
// authenticated user subscribes to, newest first.
func (h SubscriptionHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)
	p := pageParams(r)

	channels, total, err := h.Channels.ListChannels(ctx, actorID, p)
	if err != nil {
		logging.FromContext(ctx).Error("list subscriptions", "error", err, "userId", actorID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list subscriptions"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse{Items: emptyAsSlice(channels), Meta: p.MetaFor(total)})
}
