package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"makeusbetter-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WSMessage is the envelope for every live event sent to a client.
type WSMessage struct {
	Type    string      `json:"type"`
	Online  *bool       `json:"online,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// EmotionSharedEvent notifies a connected user that the partner checked
// in.
type EmotionSharedEvent struct {
	EmotionID   string             `json:"emotion_id"`
	UserID      string             `json:"user_id"`
	UserName    string             `json:"user_name"`
	EmotionType models.EmotionType `json:"emotion_type"`
	Intensity   int                `json:"intensity"`
	TextMessage *string            `json:"text_message,omitempty"`
	VoiceURL    *string            `json:"voice_url,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
}

// PairCompletedEvent notifies a waiting user that someone joined with
// their code.
type PairCompletedEvent struct {
	PartnerID   string    `json:"partner_id"`
	PartnerName string    `json:"partner_name"`
	PairedAt    time.Time `json:"paired_at"`
}

// WSHub manages live WebSocket connections, one per user.
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*websocket.Conn
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*websocket.Conn),
	}
}

// Register registers a connection for a user, replacing any existing
// one.
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	if existing, ok := h.connections[userID]; ok {
		existing.Close()
	}
	h.connections[userID] = conn
	h.mu.Unlock()

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes a user's connection if it is still the given one.
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if current, ok := h.connections[userID]; ok && current == conn {
		current.Close()
		delete(h.connections, userID)
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// IsOnline checks if a user is connected.
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.connections[userID]
	return ok
}

// SendToUser sends a message to a specific user.
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	conn, ok := h.connections[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		h.Unregister(userID, conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// NotifyPartnerStatus tells partnerID that their partner went online or
// offline. A disconnected partner is not an error.
func (h *WSHub) NotifyPartnerStatus(partnerID string, online bool) {
	if partnerID == "" || !h.IsOnline(partnerID) {
		return
	}

	if err := h.SendToUser(partnerID, WSMessage{Type: "partner_status", Online: &online}); err != nil {
		log.Error().Err(err).Str("partner_id", partnerID).Msg("Failed to notify partner status")
	}
}

// NotifyPairCompleted tells a waiting user that their code was consumed
// and the partnership now exists.
func (h *WSHub) NotifyPairCompleted(userID string, event PairCompletedEvent) {
	if !h.IsOnline(userID) {
		return
	}

	if err := h.SendToUser(userID, WSMessage{Type: "pair_completed", Data: event}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to notify pair completion")
	}
}

// NotifyEmotionShared tells a connected user about the partner's new
// check-in.
func (h *WSHub) NotifyEmotionShared(userID string, event EmotionSharedEvent) {
	if !h.IsOnline(userID) {
		return
	}

	if err := h.SendToUser(userID, WSMessage{Type: "emotion_shared", Data: event}); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to notify emotion shared")
	}
}
