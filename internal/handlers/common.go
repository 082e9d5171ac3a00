package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"makeusbetter-backend/internal/repository"
	"makeusbetter-backend/internal/services"
)

var errInvalidUpload = errors.New("a multipart file field is required")

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// statusFromError maps service and repository errors to HTTP statuses.
// Every business failure is terminal; nothing here is retried.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrCodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrAlreadyPaired):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, repository.ErrCodeConsumed),
		errors.Is(err, repository.ErrSelfPair),
		errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrInvalidEmotion),
		errors.Is(err, services.ErrInvalidIntensity),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrInvalidMonth),
		errors.Is(err, services.ErrInvalidUsername),
		errors.Is(err, services.ErrInvalidPin),
		errors.Is(err, services.ErrInvalidName):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// respondServiceError maps a service error to its HTTP status, hiding
// internal detail on 500s.
func respondServiceError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal server error"
	}
	respondError(w, message, status)
}
