package models

import "time"

// EmotionType is one of the eight fixed emotion categories.
type EmotionType string

const (
	EmotionJoy          EmotionType = "joy"
	EmotionTrust        EmotionType = "trust"
	EmotionFear         EmotionType = "fear"
	EmotionSurprise     EmotionType = "surprise"
	EmotionSadness      EmotionType = "sadness"
	EmotionDisgust      EmotionType = "disgust"
	EmotionAnger        EmotionType = "anger"
	EmotionAnticipation EmotionType = "anticipation"
)

// EmotionTypes lists every valid category.
var EmotionTypes = []EmotionType{
	EmotionJoy, EmotionTrust, EmotionFear, EmotionSurprise,
	EmotionSadness, EmotionDisgust, EmotionAnger, EmotionAnticipation,
}

// Valid reports whether t is one of the fixed categories.
func (t EmotionType) Valid() bool {
	for _, known := range EmotionTypes {
		if t == known {
			return true
		}
	}
	return false
}

// User represents a user in the system. PartnerID is a symmetric
// self-reference: if A's partner is B then B's partner is A, and it is
// only ever written on both rows inside one transaction.
type User struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	PinHash   string     `json:"-"`
	PushToken *string    `json:"push_token,omitempty"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	PairCode  *string    `json:"pair_code,omitempty"`
	IsCreator bool       `json:"is_creator"`
	PartnerID *string    `json:"partner_id,omitempty"`
	PairedAt  *time.Time `json:"paired_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Paired reports whether the user has a partner.
func (u *User) Paired() bool {
	return u.PartnerID != nil
}

// Waiting reports whether the user has generated a pair code and has no
// partner yet.
func (u *User) Waiting() bool {
	return u.IsCreator && u.PartnerID == nil && u.PairCode != nil
}

// Emotion is a single immutable check-in. CreatedAt is server-assigned
// in UTC; rows are never updated or deleted through the API.
type Emotion struct {
	ID          string      `json:"id"`
	UserID      string      `json:"user_id"`
	EmotionType EmotionType `json:"emotion_type"`
	Intensity   int         `json:"intensity"`
	TextMessage *string     `json:"text_message,omitempty"`
	VoiceURL    *string     `json:"voice_url,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
