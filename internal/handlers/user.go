package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"makeusbetter-backend/internal/middleware"
	"makeusbetter-backend/internal/services"

	"github.com/rs/zerolog/log"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// UserHandler handles profile HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdatePushTokenRequest represents the request body for a push token
// update
type UpdatePushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// GetProfile handles GET /api/user/profile
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	profile, err := h.userService.GetProfile(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdatePushToken handles PUT /api/user/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UpdatePushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(ctx, userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// UpdateAvatar handles POST /api/user/avatar
func (h *UserHandler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	data, contentType, err := readUpload(r, "avatar")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	avatarURL, err := h.userService.UpdateAvatar(ctx, userID, data, contentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update avatar")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("avatar_url", avatarURL).Msg("Avatar updated")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"avatarUrl": avatarURL,
	})
}

// readUpload extracts a single multipart file field.
func readUpload(r *http.Request, field string) ([]byte, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", errInvalidUpload
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", errInvalidUpload
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		return nil, "", errInvalidUpload
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	return data, contentType, nil
}
