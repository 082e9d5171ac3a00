package handlers

import (
	"net/http"

	"makeusbetter-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler handles live event connections
type WebSocketHandler struct {
	hub         *services.WSHub
	authService *services.AuthService
	pairService *services.PairService
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(
	hub *services.WSHub,
	authService *services.AuthService,
	pairService *services.PairService,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:         hub,
		authService: authService,
		pairService: pairService,
	}
}

// HandleWebSocket handles GET /ws?token=. The connection only receives
// events (partner presence, pairing completion, shared emotions);
// incoming frames are drained so pings and closes are processed.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.authService.ValidateToken(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	ctx := r.Context()
	partner, err := h.pairService.GetPartnerByUserID(ctx, userID)
	if err == nil && partner != nil {
		h.hub.NotifyPartnerStatus(partner.ID, true)
		defer h.hub.NotifyPartnerStatus(partner.ID, false)

		online := h.hub.IsOnline(partner.ID)
		statusMsg := services.WSMessage{Type: "partner_status", Online: &online}
		if err := h.hub.SendToUser(userID, statusMsg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to send partner status")
		}
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			return
		}
	}
}
