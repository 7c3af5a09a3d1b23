package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/cliptube/backend/internal/auth"
	"github.com/cliptube/backend/internal/logging"
	"github.com/cliptube/backend/internal/repositories"
)

// maxImageUploadBytes caps avatar and cover image uploads.
const maxImageUploadBytes = 10 << 20

// UserHandler implements account profile and channel endpoints.
type UserHandler struct {
	Users   UserStore
	Media   MediaStore
	NowFunc func() time.Time
}

// Me handles GET /api/v1/users/me requests.
func (h UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)

	user, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		logging.FromContext(ctx).Error("load current user", "error", err, "userId", actorID)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "unable to load account"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, userPayload(user))
}

// UpdateAccount handles PATCH /api/v1/users/me requests. Only the full name
// and email can change here; media updates have dedicated endpoints.
func (h UserHandler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid account update payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	user, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		logger.Error("load account for update", "error", err, "userId", actorID)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "unable to load account"})
		return
	}

	if req.FullName != nil {
		user.FullName = strings.TrimSpace(*req.FullName)
	}
	if req.Email != nil {
		email := strings.TrimSpace(strings.ToLower(*req.Email))
		if _, err := mail.ParseAddress(email); err != nil {
			logger.Warn("account update invalid email", "email", email)
			respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid email address"})
			return
		}
		user.Email = email
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondJSON(ctx, w, http.StatusConflict, map[string]string{"error": "email already taken"})
			return
		}
		logger.Error("account update failed", "error", err, "userId", actorID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update account"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, userPayload(user))
}

// ChangePassword handles POST /api/v1/users/me/password requests.
func (h UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid password change payload", "error", err)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "current and new password are required"})
		return
	}
	if len(req.NewPassword) < 8 {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "password must be at least 8 characters"})
		return
	}

	user, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		logger.Error("load account for password change", "error", err, "userId", actorID)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "unable to load account"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		logger.Warn("password change rejected", "userId", actorID)
		respondJSON(ctx, w, http.StatusUnauthorized, map[string]string{"error": "current password is incorrect"})
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("hash new password", "error", err)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to secure password"})
		return
	}

	user.Password = string(hashed)
	user.UpdatedAt = h.now()
	if err := h.Users.Update(ctx, user); err != nil {
		logger.Error("persist new password", "error", err, "userId", actorID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to change password"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"status": "password changed"})
}

// UpdateAvatar handles PATCH /api/v1/users/me/avatar multipart requests.
func (h UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "avatar")
}

// UpdateCover handles PATCH /api/v1/users/me/cover multipart requests.
func (h UserHandler) UpdateCover(w http.ResponseWriter, r *http.Request) {
	h.updateImage(w, r, "coverImage")
}

func (h UserHandler) updateImage(w http.ResponseWriter, r *http.Request, field string) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)
	actorID := auth.ActorID(ctx)

	if h.Media == nil {
		logger.Error("media store unavailable", "field", field)
		respondJSON(ctx, w, http.StatusServiceUnavailable, map[string]string{"error": "media uploads are not configured"})
		return
	}

	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		logger.Warn("invalid multipart form", "error", err, "field", field)
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": field + " file is required"})
		return
	}
	defer file.Close()

	url, err := h.Media.Save(ctx, "images", header.Filename, file)
	if err != nil {
		logger.Error("image upload failed", "error", err, "field", field)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to store image"})
		return
	}

	user, err := h.Users.FindByID(ctx, actorID)
	if err != nil {
		logger.Error("load account for image update", "error", err, "userId", actorID)
		respondJSON(ctx, w, storeErrorStatus(err), map[string]string{"error": "unable to load account"})
		return
	}

	switch field {
	case "avatar":
		user.AvatarURL = url
	case "coverImage":
		user.CoverImageURL = url
	}
	user.UpdatedAt = h.now()

	if err := h.Users.Update(ctx, user); err != nil {
		logger.Error("persist image update", "error", err, "userId", actorID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "failed to update account"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, userPayload(user))
}

// Channel handles GET /api/v1/channels/{username} requests. Anonymous viewers
// get the profile with isSubscribed always false.
func (h UserHandler) Channel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := strings.TrimSpace(strings.ToLower(r.PathValue("username")))
	if username == "" {
		respondJSON(ctx, w, http.StatusBadRequest, map[string]string{"error": "username is required"})
		return
	}

	profile, err := h.Users.ChannelProfile(ctx, username, auth.ActorID(ctx))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondJSON(ctx, w, http.StatusNotFound, map[string]string{"error": "channel not found"})
			return
		}
		logging.FromContext(ctx).Error("load channel profile", "error", err, "username", username)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load channel"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, profile)
}

// WatchHistory handles GET /api/v1/users/me/history requests.
func (h UserHandler) WatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := auth.ActorID(ctx)
	p := pageParams(r)

	views, total, err := h.Users.WatchHistory(ctx, actorID, p)
	if err != nil {
		logging.FromContext(ctx).Error("load watch history", "error", err, "userId", actorID)
		respondJSON(ctx, w, http.StatusInternalServerError, map[string]string{"error": "unable to load watch history"})
		return
	}

	respondJSON(ctx, w, http.StatusOK, listResponse{Items: emptyAsSlice(views), Meta: p.MetaFor(total)})
}

type updateAccountRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (h UserHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

// emptyAsSlice keeps JSON list payloads as [] instead of null.
func emptyAsSlice[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
