package handlers

import (
	"encoding/json"
	"net/http"

	"makeusbetter-backend/internal/middleware"
	"makeusbetter-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PairHandler handles pairing HTTP requests
type PairHandler struct {
	pairService *services.PairService
}

// NewPairHandler creates a new pair handler
func NewPairHandler(pairService *services.PairService) *PairHandler {
	return &PairHandler{pairService: pairService}
}

// JoinPairRequest represents the request body for joining a pair
type JoinPairRequest struct {
	PairCode string `json:"pairCode"`
}

// CreatePair handles POST /api/pair/create
func (h *PairHandler) CreatePair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	result, err := h.pairService.CreatePair(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to create pair code")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// JoinPair handles POST /api/pair/join
func (h *PairHandler) JoinPair(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req JoinPairRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.PairCode == "" {
		respondError(w, "pairCode is required", http.StatusBadRequest)
		return
	}

	result, err := h.pairService.JoinPair(ctx, userID, req.PairCode)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("pair_code", req.PairCode).
			Msg("Failed to join pair")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetPartner handles GET /api/pair/partner
func (h *PairHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	info, err := h.pairService.GetPartner(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get partner")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}
