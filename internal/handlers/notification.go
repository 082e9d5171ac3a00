package handlers

import (
	"encoding/json"
	"net/http"

	"makeusbetter-backend/internal/repository"
	"makeusbetter-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// NotificationHandler exposes a debug surface for sending an arbitrary
// push to a user.
type NotificationHandler struct {
	userRepo *repository.UserRepository
	notifier services.Notifier
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(userRepo *repository.UserRepository, notifier services.Notifier) *NotificationHandler {
	return &NotificationHandler{
		userRepo: userRepo,
		notifier: notifier,
	}
}

// SendNotificationRequest represents the request body for a debug send
type SendNotificationRequest struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data,omitempty"`
}

// SendToUser handles POST /api/debug/notification/send/{userId}
func (h *NotificationHandler) SendToUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	targetID := chi.URLParam(r, "userId")

	var req SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Body == "" {
		respondError(w, "title and body are required", http.StatusBadRequest)
		return
	}

	user, err := h.userRepo.GetByID(ctx, targetID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if user.PushToken == nil {
		respondError(w, "user has no registered push endpoint", http.StatusBadRequest)
		return
	}

	delivered, err := h.notifier.Send(ctx, *user.PushToken, services.Notification{
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", targetID).Msg("Debug notification failed")
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  delivered,
		"userId":   user.ID,
		"userName": user.Name,
	})
}
