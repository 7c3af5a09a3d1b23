package handlers

import (
	"errors"
	"net/http"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/engagement"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// LikeHandler implements like toggle and liked-video listing endpoints.
type LikeHandler struct {
	Likes      LikeService
	LikedLists LikedVideoLister
}

// ToggleVideo handles POST /api/v1/likes/videos/{id} requests.
func (h LikeHandler) ToggleVideo(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.TargetVideo)
}

// ToggleComment handles POST /api/v1/likes/comments/{id} requests.
func (h LikeHandler) ToggleComment(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.TargetComment)
}

// ToggleTweet handles POST /api/v1/likes/tweets/{id} requests.
func (h LikeHandler) ToggleTweet(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, models.TargetTweet)
}

func (h LikeHandler) toggle(w http.ResponseWriter, r *http.Request, kind models.TargetKind) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	target, err := models.NewLikeTarget(kind, r.PathValue("id"))
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid like target"})
		return
	}

	result, err := h.Likes.Toggle(ctx, actorID, target)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": string(kind) + " not found"})
		case errors.Is(err, engagement.ErrActorRequired):
			respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "authentication required"})
		default:
			logger.Error("toggle like", "error", err, "kind", string(kind), "targetId", target.ID)
			respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to toggle like"})
		}
		return
	}

	respondJSON(ctx, w, http.StatusOK, toggleResponse{State: result.State})
}

// LikedVideos handles GET /api/v1/likes/videos requests, listing the
// authenticated user's liked videos newest first.
func (h LikeHandler) LikedVideos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)
	p := pageParams(r)

	liked, total, err := h.LikedLists.ListLikedVideos(ctx, actorID, p)
	if err != nil {
		logging.FromContext(ctx).Error("list liked videos", "error", err, "userId", actorID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list liked videos"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse{Items: emptyAsSlice(liked), Meta: p.MetaFor(total)})
}

type toggleResponse struct {
	State engagement.ToggleState `json:"state"`
}
