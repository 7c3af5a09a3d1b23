package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
)

// maxTweetLength bounds tweet content.
const maxTweetLength = 280

// TweetHandler implements tweet endpoints.
type TweetHandler struct {
	Tweets  TweetStore
	NowFunc func() time.Time
}

// Create handles POST /api/v1/tweets requests.
func (h TweetHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}
	if len(content) > maxTweetLength {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content exceeds the maximum length"})
		return
	}

	now := h.now()
	tweet := models.Tweet{
		ID:        uuid.NewString(),
		OwnerID:   actorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Tweets.Create(ctx, tweet); err != nil {
		logger.Error("persist tweet", "error", err)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to create tweet"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, tweet)
}

// List handles GET /api/v1/tweets requests. An optional ownerId query
// parameter restricts the listing to one author.
func (h TweetHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := strings.TrimSpace(r.URL.Query().Get("ownerId"))
	p := pageParams(r)

	views, total, err := h.Tweets.List(ctx, ownerID, p)
	if err != nil {
		logging.FromContext(ctx).Error("list tweets", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list tweets"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse{Items: emptyAsSlice(views), Meta: p.MetaFor(total)})
}

// Update handles PATCH /api/v1/tweets/{id} requests. Only the author may
// update a tweet.
func (h TweetHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	tweet, err := h.Tweets.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "tweet not found"})
		return
	}
	if tweet.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the author may update this tweet"})
		return
	}

	var req tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid tweet update payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}
	if len(content) > maxTweetLength {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content exceeds the maximum length"})
		return
	}

	tweet.Content = content
	tweet.UpdatedAt = h.now()

	if err := h.Tweets.Update(ctx, tweet); err != nil {
		logger.Error("update tweet", "error", err, "tweetId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to update tweet"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, tweet)
}

// Delete handles DELETE /api/v1/tweets/{id} requests. Only the author may
// delete a tweet.
func (h TweetHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	tweet, err := h.Tweets.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "tweet not found"})
		return
	}
	if tweet.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the author may delete this tweet"})
		return
	}

	if err := h.Tweets.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete tweet", "error", err, "tweetId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to delete tweet"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type tweetRequest struct {
	Content string `json:"content"`
}

func (h TweetHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
