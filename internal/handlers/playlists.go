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

// PlaylistHandler implements playlist endpoints.
type PlaylistHandler struct {
	Playlists PlaylistStore
	NowFunc   func() time.Time
}

// Create handles POST /api/v1/playlists requests.
func (h PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	var req playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	now := h.now()
	playlist := models.Playlist{
		ID:          uuid.NewString(),
		OwnerID:     actorID,
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := h.Playlists.Create(ctx, playlist); err != nil {
		logger.Error("persist playlist", "error", err)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to create playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusCreated, playlist)
}

// Get handles GET /api/v1/playlists/{id} requests.
func (h PlaylistHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := r.PathValue("id")
	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "playlist not found"})
			return
		}
		logging.FromContext(ctx).Error("load playlist", "error", err, "playlistId", id)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlist)
}

// ListMine handles GET /api/v1/playlists requests, listing the authenticated
// user's playlists.
func (h PlaylistHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)
	p := pageParams(r)

	playlists, total, err := h.Playlists.ListForOwner(ctx, actorID, p)
	if err != nil {
		logging.FromContext(ctx).Error("list playlists", "error", err, "userId", actorID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to list playlists"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse{Items: emptyAsSlice(playlists), Meta: p.MetaFor(total)})
}

// Update handles PATCH /api/v1/playlists/{id} requests. Only the owner may
// update a playlist.
func (h PlaylistHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "playlist not found"})
		return
	}
	if playlist.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner may update this playlist"})
		return
	}

	var req updatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid playlist update payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
			return
		}
		playlist.Name = name
	}
	if req.Description != nil {
		playlist.Description = strings.TrimSpace(*req.Description)
	}
	playlist.UpdatedAt = h.now()

	if err := h.Playlists.Update(ctx, playlist); err != nil {
		logger.Error("update playlist", "error", err, "playlistId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to update playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, playlist)
}

// Delete handles DELETE /api/v1/playlists/{id} requests.
func (h PlaylistHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "playlist not found"})
		return
	}
	if playlist.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner may delete this playlist"})
		return
	}

	if err := h.Playlists.Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Error("delete playlist", "error", err, "playlistId", id)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "failed to delete playlist"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AddVideo handles POST /api/v1/playlists/{id}/videos/{videoId} requests.
// Adding a video that is already in the playlist is a no-op success.
func (h PlaylistHandler) AddVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	videoID := r.PathValue("videoId")

	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "playlist not found"})
		return
	}
	if playlist.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner may modify this playlist"})
		return
	}

	if err := h.Playlists.AddVideo(ctx, id, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video not found"})
			return
		}
		logging.FromContext(ctx).Error("add playlist video", "error", err, "playlistId", id, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to add video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "added"})
}

// RemoveVideo handles DELETE /api/v1/playlists/{id}/videos/{videoId} requests.
func (h PlaylistHandler) RemoveVideo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	id := r.PathValue("id")
	videoID := r.PathValue("videoId")

	playlist, err := h.Playlists.FindByID(ctx, id)
	if err != nil {
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "playlist not found"})
		return
	}
	if playlist.OwnerID != actorID {
		respondJSON(ctx, w, http.StatusForbidden, map[string]string{"error": "only the owner may modify this playlist"})
		return
	}

	if err := h.Playlists.RemoveVideo(ctx, id, videoID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "video is not in this playlist"})
			return
		}
		logging.FromContext(ctx).Error("remove playlist video", "error", err, "playlistId", id, "videoId", videoID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to remove video"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "removed"})
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type updatePlaylistRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h PlaylistHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}
