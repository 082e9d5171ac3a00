package handlers

import (
	"encoding/json"
	"net/http"

	"makeusbetter-backend/internal/middleware"
	"makeusbetter-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// EmotionHandler handles emotion HTTP requests
type EmotionHandler struct {
	emotionService *services.EmotionService
}

// NewEmotionHandler creates a new emotion handler
func NewEmotionHandler(emotionService *services.EmotionService) *EmotionHandler {
	return &EmotionHandler{emotionService: emotionService}
}

// CreateEmotion handles POST /api/emotions
func (h *EmotionHandler) CreateEmotion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var input services.CreateEmotionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.emotionService.RecordEmotion(ctx, userID, input)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("emotion_type", string(input.EmotionType)).
			Msg("Failed to record emotion")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("emotion_id", result.EmotionID).
		Str("emotion_type", string(input.EmotionType)).
		Msg("Emotion recorded")

	respondJSON(w, http.StatusCreated, result)
}

// GetCalendar handles GET /api/emotions/calendar?partnerId&month=YYYY-MM
func (h *EmotionHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	partnerID := r.URL.Query().Get("partnerId")
	month := r.URL.Query().Get("month")

	if partnerID == "" {
		respondError(w, "partnerId is required", http.StatusBadRequest)
		return
	}
	if month == "" {
		respondError(w, "month is required", http.StatusBadRequest)
		return
	}

	data, err := h.emotionService.GetEmotionsForMonth(r.Context(), partnerID, month)
	if err != nil {
		log.Error().
			Err(err).
			Str("partner_id", partnerID).
			Str("month", month).
			Msg("Failed to get calendar data")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, data)
}

// GetToday handles GET /api/emotions/today?partnerId
func (h *EmotionHandler) GetToday(w http.ResponseWriter, r *http.Request) {
	partnerID := r.URL.Query().Get("partnerId")
	if partnerID == "" {
		respondError(w, "partnerId is required", http.StatusBadRequest)
		return
	}

	emotions, err := h.emotionService.GetTodayEmotions(r.Context(), partnerID)
	if err != nil {
		log.Error().Err(err).Str("partner_id", partnerID).Msg("Failed to get today emotions")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, emotions)
}
