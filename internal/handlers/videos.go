package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/models"
	"github.com/cliptube/backend/internal/repositories"
)

// maxVideoUploadBytes caps the multipart payload of a video publish.
const maxVideoUploadBytes = 512 << 20

// VideoHandler implements video publishing, listing, and lifecycle endpoints.
type VideoHandler struct {
	Videos  VideoStore
	Users   UserStore
	Media   MediaStore
	NowFunc func() time.Time
}

// Publish handles POST /api/v1/videos multipart requests: uploads the video
// file and thumbnail, then persists the record.
func (h VideoHandler) Publish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	if h.Media == nil {
		logger.Error("media store unavailable")
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "media uploads are not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxVideoUploadBytes); err != nil {
		logger.Warn("invalid publish form", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title is required"})
		return
	}
	description := strings.TrimSpace(r.FormValue("description"))
	duration, _ := strconv.ParseFloat(r.FormValue("duration"), 64)

	videoFile, videoHeader, err := r.FormFile("videoFile")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "videoFile is required"})
		return
	}
	defer videoFile.Close()

	thumbFile, thumbHeader, err := r.FormFile("thumbnail")
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "thumbnail is required"})
		return
	}
	defer thumbFile.Close()

	videoURL, err := h.Media.Save(ctx, "videos", videoHeader.Filename, videoFile)
	if err != nil {
		logger.Error("video upload failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store video"})
		return
	}

	thumbURL, err := h.Media.Save(ctx, "thumbnails", thumbHeader.Filename, thumbFile)
	if err != nil {
		logger.Error("thumbnail upload failed", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store thumbnail"})
		return
	}

	now := h.now()
	video := models.Video{
		ID:           uuid.NewString(),
		OwnerID:      actorID,
		VideoFileURL: videoURL,
		ThumbnailURL: thumbURL,
		Title:        title,
		Description:  description,
		Duration:     duration,
		IsPublished:  true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.Videos.Create(ctx, video); err != nil {
		logger.Error("persist video", "error", err, "videoId", video.ID)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to publish video"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, video)
}

// List handles GET /api/v1/videos requests with optional query, owner,
// sortBy, and order parameters.
func (h VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	p := pageParams(r)

	filter := repositories.VideoFilter{
		Query:     strings.TrimSpace(q.Get("query")),
		OwnerID:   strings.TrimSpace(q.Get("ownerId")),
		SortBy:    strings.TrimSpace(q.Get("sortBy")),
		Ascending: strings.EqualFold(q.Get("order"), "asc"),
	}

	views, total, err := h.Videos.List(ctx, filter, p)
	if err != nil {
		logging.FromContext(ctx).Error("list videos", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list videos"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse{Items: emptyAsSlice(views), Meta: p.MetaFor(total)})
}

// Get handles GET /api/v1/videos/{id} requests. Authenticated views are
// appended to the viewer's watch history; history write failures are logged
// but never fail the read.
func (h VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	viewerID := auth.ActorID(ctx)

	id := r.PathValue("id")
	view, err := h.Videos.View(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logger.Error("load video view", "error", err, "videoId", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load video"})
		return
	}

	if viewerID != "" {
		if err := h.Users.AppendWatchHistory(ctx, viewerID, id); err != nil {
			logger.Warn("append watch history", "error", err, "videoId", id, "userId", viewerID)
		}
	}

	respondJSON(ctx, w, http.StatusOK, view)
}

// Update handles PATCH /api/v1/videos/{id} requests. Only the owner may
// update a video.
func (h VideoHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "video not found"})
		return
	}
	if video.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner may update this video"})
		return
	}

	var req updateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid video update payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "title must not be empty"})
			return
		}
		video.Title = title
	}
	if req.Description != nil {
		video.Description = strings.TrimSpace(*req.Description)
	}
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		logger.Error("update video", "error", err, "videoId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to update video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// TogglePublish handles PATCH /api/v1/videos/{id}/publish requests, flipping
// the video's published flag.
func (h VideoHandler) TogglePublish(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "video not found"})
		return
	}
	if video.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner may update this video"})
		return
	}

	video.IsPublished = !video.IsPublished
	video.UpdatedAt = h.now()

	if err := h.Videos.Update(ctx, video); err != nil {
		logging.FromContext(ctx).Error("toggle publish", "error", err, "videoId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to update video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, video)
}

// Delete handles DELETE /api/v1/videos/{id} requests. Only the owner may
// delete a video.
func (h VideoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	video, err := h.Videos.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "video not found"})
		return
	}
	if video.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner may delete this video"})
		return
	}

	if err := h.Videos.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete video", "error", err, "videoId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to delete video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

type updateVideoRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

func (h VideoHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
