package handlers

import (
	"encoding/json"
	"net/http"

	"makeusbetter-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// AuthHandler handles registration and login requests
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Pin      string `json:"pin"`
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username"`
	Pin      string `json:"pin"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Register(r.Context(), req.Username, req.Name, req.Pin)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to register user")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", result.UserID).
		Str("username", result.Username).
		Msg("User registered")

	respondJSON(w, http.StatusCreated, result)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Username, req.Pin)
	if err != nil {
		log.Error().Err(err).Str("username", req.Username).Msg("Failed to log in user")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", result.UserID).
		Str("username", result.Username).
		Msg("User logged in")

	respondJSON(w, http.StatusOK, result)
}
