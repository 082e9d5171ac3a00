package handlers

import (
	"net/http"

	"makeusbetter-backend/internal/middleware"
	"makeusbetter-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// MediaHandler handles voice clip uploads
type MediaHandler struct {
	mediaService *services.MediaService
}

// NewMediaHandler creates a new media handler
func NewMediaHandler(mediaService *services.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// UploadVoice handles POST /api/media/voice. The returned URL is passed
// as voiceUrl when creating an emotion.
func (h *MediaHandler) UploadVoice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	data, contentType, err := readUpload(r, "voice")
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	voiceURL, err := h.mediaService.UploadVoice(ctx, userID, data, contentType)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to upload voice clip")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("user_id", userID).Str("voice_url", voiceURL).Msg("Voice clip uploaded")

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"voiceUrl": voiceURL,
	})
}
