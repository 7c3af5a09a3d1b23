package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// CommentHandler implements video comment endpoints.
type CommentHandler struct {
	Comments CommentStore
	Videos   VideoStore
	NowFunc  func() time.Time
}

// ListForVideo handles GET /api/v1/videos/{id}/comments requests.
func (h CommentHandler) ListForVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	videoID := r.PathValue("id")
	p := pageParams(r)

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logging.FromContext(ctx).Error("resolve video for comments", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load comments"})
		return
	}

	views, total, err := h.Comments.ListForVideo(ctx, videoID, p)
	if err != nil {
		logging.FromContext(ctx).Error("list comments", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load comments"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse{Items: emptyAsSlice(views), Meta: p.MetaFor(total)})
}

// Create handles POST /api/v1/videos/{id}/comments requests.
func (h CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)
	videoID := r.PathValue("id")

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	if _, err := h.Videos.FindByID(ctx, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logger.Error("resolve video for comment", "error", err, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to create comment"})
		return
	}

	now := h.now()
	comment := models.Comment{
		ID:        uuid.NewString(),
		OwnerID:   actorID,
		VideoID:   videoID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Comments.Create(ctx, comment); err != nil {
		logger.Error("persist comment", "error", err, "videoId", videoID)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to create comment"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, comment)
}

// Update handles PATCH /api/v1/comments/{id} requests. Only the comment's
// author may update it.
func (h CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	comment, err := h.Comments.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "comment not found"})
		return
	}
	if comment.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the author may update this comment"})
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid comment update payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "content is required"})
		return
	}

	comment.Content = content
	comment.UpdatedAt = h.now()

	if err := h.Comments.Update(ctx, comment); err != nil {
		logger.Error("update comment", "error", err, "commentId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to update comment"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, comment)
}

// Delete handles DELETE /api/v1/comments/{id} requests. The comment's author
// or the video's owner may delete it.
func (h CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	comment, err := h.Comments.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "comment not found"})
		return
	}

	allowed := comment.OwnerID == actorID
	if !allowed {
		if video, err := h.Videos.FindByID(ctx, comment.VideoID); err == nil {
			allowed = video.OwnerID == actorID
		}
	}
	if !allowed {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "not allowed to delete this comment"})
		return
	}

	if err := h.Comments.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete comment", "error", err, "commentId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to delete comment"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (h CommentHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
