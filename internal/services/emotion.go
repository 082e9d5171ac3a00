package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"makeusbetter-backend/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Calendar days are anchored to a fixed +7h offset, independent of the
// server's own timezone.
var displayZone = time.FixedZone("UTC+7", 7*60*60)

const defaultIntensity = 50

// Validation failures for emotion creation and queries.
var (
	ErrInvalidEmotion   = errors.New("emotion type is not one of the known categories")
	ErrInvalidIntensity = errors.New("intensity must be between 1 and 100")
	ErrInvalidDate      = errors.New("date must be formatted YYYY-MM-DD")
	ErrInvalidMonth     = errors.New("month must be formatted YYYY-MM")
)

// CreateEmotionInput carries a check-in. A nil Intensity defaults to 50.
type CreateEmotionInput struct {
	EmotionType models.EmotionType `json:"emotionType"`
	Intensity   *int               `json:"intensity,omitempty"`
	TextMessage *string            `json:"textMessage,omitempty"`
	VoiceURL    *string            `json:"voiceUrl,omitempty"`
}

// RecordEmotionResult is returned after a successful check-in.
type RecordEmotionResult struct {
	Success   bool   `json:"success"`
	EmotionID string `json:"emotionId"`
}

// DayEmotion is the projection used by the day and today queries. Time
// is the check-in instant shifted to the display offset, as HH:MM.
type DayEmotion struct {
	ID          string             `json:"id"`
	Type        models.EmotionType `json:"type"`
	Intensity   int                `json:"intensity"`
	TextMessage *string            `json:"textMessage,omitempty"`
	VoiceURL    *string            `json:"voiceUrl,omitempty"`
	Time        string             `json:"time"`
	CreatedAt   time.Time          `json:"createdAt"`
}

// CalendarEmotion is one check-in inside a calendar day group.
type CalendarEmotion struct {
	Type        models.EmotionType `json:"type"`
	Time        string             `json:"time"`
	Intensity   int                `json:"intensity"`
	TextMessage *string            `json:"textMessage,omitempty"`
	VoiceURL    *string            `json:"voiceUrl,omitempty"`
}

// CalendarDay groups same-day check-ins under a YYYY-MM-DD key.
type CalendarDay struct {
	Date     string            `json:"date"`
	Emotions []CalendarEmotion `json:"emotions"`
}

// CalendarData is the month query response.
type CalendarData struct {
	Emotions []CalendarDay `json:"emotions"`
}

// EmotionStore is the slice of the emotion repository the service
// depends on. Satisfied by repository.EmotionRepository.
type EmotionStore interface {
	Create(ctx context.Context, emotion *models.Emotion) error
	GetByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*models.Emotion, error)
}

// EmotionService records immutable check-ins and answers calendar
// queries with day boundaries anchored to the display offset.
type EmotionService struct {
	emotionRepo EmotionStore
	userRepo    UserStore
	pairService *PairService
	notifier    Notifier
	hub         *WSHub
}

// NewEmotionService creates a new emotion service. hub may be nil when
// live events are disabled.
func NewEmotionService(
	emotionRepo EmotionStore,
	userRepo UserStore,
	pairService *PairService,
	notifier Notifier,
	hub *WSHub,
) *EmotionService {
	return &EmotionService{
		emotionRepo: emotionRepo,
		userRepo:    userRepo,
		pairService: pairService,
		notifier:    notifier,
		hub:         hub,
	}
}

// RecordEmotion persists a check-in with a server-assigned UTC timestamp
// and notifies the partner best-effort. Notification failures are logged
// and never surfaced to the caller.
func (s *EmotionService) RecordEmotion(ctx context.Context, userID string, input CreateEmotionInput) (*RecordEmotionResult, error) {
	intensity, err := resolveIntensity(input.EmotionType, input.Intensity)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	emotion := &models.Emotion{
		ID:          uuid.New().String(),
		UserID:      userID,
		EmotionType: input.EmotionType,
		Intensity:   intensity,
		TextMessage: input.TextMessage,
		VoiceURL:    input.VoiceURL,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.emotionRepo.Create(ctx, emotion); err != nil {
		return nil, err
	}

	go s.notifyPartner(user, emotion)

	return &RecordEmotionResult{
		Success:   true,
		EmotionID: emotion.ID,
	}, nil
}

// GetEmotionsForDay returns a user's check-ins for one calendar day.
// date must be YYYY-MM-DD; the day runs 00:00:00.000-23:59:59.999 at the
// display offset.
func (s *EmotionService) GetEmotionsForDay(ctx context.Context, targetUserID, date string) ([]DayEmotion, error) {
	day, err := time.ParseInLocation("2006-01-02", date, displayZone)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return s.emotionsForDay(ctx, targetUserID, day)
}

// GetTodayEmotions returns the target user's check-ins for the current
// calendar day at the display offset.
func (s *EmotionService) GetTodayEmotions(ctx context.Context, targetUserID string) ([]DayEmotion, error) {
	today := time.Now().In(displayZone).Format("2006-01-02")
	return s.GetEmotionsForDay(ctx, targetUserID, today)
}

// GetEmotionsForMonth returns a user's check-ins for one calendar month,
// grouped by shifted day key in first-appearance order. month must be
// YYYY-MM; the last day is derived by calendar arithmetic, so variable
// month lengths and leap years fall out of time.Date normalization.
func (s *EmotionService) GetEmotionsForMonth(ctx context.Context, targetUserID, month string) (*CalendarData, error) {
	start, err := time.ParseInLocation("2006-01", month, displayZone)
	if err != nil {
		return nil, ErrInvalidMonth
	}

	from, to := monthRangeUTC(start.Year(), start.Month())
	emotions, err := s.emotionRepo.GetByUserAndRange(ctx, targetUserID, from, to)
	if err != nil {
		return nil, err
	}

	return groupByDay(emotions), nil
}

func (s *EmotionService) emotionsForDay(ctx context.Context, targetUserID string, day time.Time) ([]DayEmotion, error) {
	from, to := dayRangeUTC(day)
	emotions, err := s.emotionRepo.GetByUserAndRange(ctx, targetUserID, from, to)
	if err != nil {
		return nil, err
	}

	result := make([]DayEmotion, 0, len(emotions))
	for _, e := range emotions {
		result = append(result, DayEmotion{
			ID:          e.ID,
			Type:        e.EmotionType,
			Intensity:   e.Intensity,
			TextMessage: e.TextMessage,
			VoiceURL:    e.VoiceURL,
			Time:        displayTime(e.CreatedAt),
			CreatedAt:   e.CreatedAt,
		})
	}
	return result, nil
}

// notifyPartner pushes the check-in to the partner's registered device
// and live connection. Runs outside the request; all failures end here.
func (s *EmotionService) notifyPartner(user *models.User, emotion *models.Emotion) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	partner, err := s.pairService.GetPartnerByUserID(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to resolve partner for notification")
		return
	}
	if partner == nil {
		return
	}

	if s.hub != nil {
		s.hub.NotifyEmotionShared(partner.ID, EmotionSharedEvent{
			EmotionID:   emotion.ID,
			UserID:      user.ID,
			UserName:    user.Name,
			EmotionType: emotion.EmotionType,
			Intensity:   emotion.Intensity,
			TextMessage: emotion.TextMessage,
			VoiceURL:    emotion.VoiceURL,
			CreatedAt:   emotion.CreatedAt,
		})
	}

	if partner.PushToken == nil {
		return
	}

	notification := emotionNotification(user, emotion)
	delivered, err := s.notifier.Send(ctx, *partner.PushToken, notification)
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", user.ID).
			Str("partner_id", partner.ID).
			Msg("Failed to send emotion notification")
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Str("partner_id", partner.ID).
		Str("emotion_id", emotion.ID).
		Bool("delivered", delivered).
		Msg("Emotion notification sent")
}

// emotionNotification builds the push payload for a check-in.
func emotionNotification(user *models.User, emotion *models.Emotion) Notification {
	title := fmt.Sprintf("%s is feeling %s %s",
		user.Name, emotionLabel(emotion.EmotionType), emotionEmoji(emotion.EmotionType))

	body := fmt.Sprintf("Intensity: %d%%", emotion.Intensity)
	if emotion.TextMessage != nil && *emotion.TextMessage != "" {
		body = fmt.Sprintf("%q - Intensity: %d%%", *emotion.TextMessage, emotion.Intensity)
	}

	n := Notification{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":        "emotion",
			"emotionType": string(emotion.EmotionType),
			"userId":      user.ID,
			"emotionId":   emotion.ID,
		},
	}
	if user.AvatarURL != nil {
		n.ImageURL = *user.AvatarURL
	}
	return n
}

func emotionEmoji(t models.EmotionType) string {
	switch t {
	case models.EmotionJoy:
		return "😊"
	case models.EmotionTrust:
		return "🤝"
	case models.EmotionFear:
		return "😨"
	case models.EmotionSurprise:
		return "😲"
	case models.EmotionSadness:
		return "😢"
	case models.EmotionDisgust:
		return "🤢"
	case models.EmotionAnger:
		return "😠"
	case models.EmotionAnticipation:
		return "🤩"
	default:
		return "💭"
	}
}

func emotionLabel(t models.EmotionType) string {
	switch t {
	case models.EmotionJoy:
		return "joyful"
	case models.EmotionTrust:
		return "trusting"
	case models.EmotionFear:
		return "scared"
	case models.EmotionSurprise:
		return "surprised"
	case models.EmotionSadness:
		return "sad"
	case models.EmotionDisgust:
		return "disgusted"
	case models.EmotionAnger:
		return "angry"
	case models.EmotionAnticipation:
		return "excited"
	default:
		return string(t)
	}
}

// resolveIntensity validates the category and intensity, applying the
// default when intensity is omitted.
func resolveIntensity(t models.EmotionType, intensity *int) (int, error) {
	if !t.Valid() {
		return 0, ErrInvalidEmotion
	}
	if intensity == nil {
		return defaultIntensity, nil
	}
	if *intensity < 1 || *intensity > 100 {
		return 0, ErrInvalidIntensity
	}
	return *intensity, nil
}

// dayRangeUTC converts a calendar day at the display offset into the
// UTC instant range [00:00:00.000, 23:59:59.999] of that day.
func dayRangeUTC(day time.Time) (time.Time, time.Time) {
	y, m, d := day.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, displayZone)
	to := time.Date(y, m, d, 23, 59, 59, 999_000_000, displayZone)
	return from.UTC(), to.UTC()
}

// monthRangeUTC returns the UTC instant range covering a whole calendar
// month at the display offset. Day 0 of the following month normalizes
// to the last day of this one.
func monthRangeUTC(year int, month time.Month) (time.Time, time.Time) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, displayZone)
	to := time.Date(year, month+1, 0, 23, 59, 59, 999_000_000, displayZone)
	return from.UTC(), to.UTC()
}

// displayTime renders a stored UTC instant as HH:MM at the display
// offset.
func displayTime(t time.Time) string {
	return t.In(displayZone).Format("15:04")
}

// dateKey renders a stored UTC instant as the YYYY-MM-DD calendar day it
// falls on at the display offset.
func dateKey(t time.Time) string {
	return t.In(displayZone).Format("2006-01-02")
}

// groupByDay buckets emotions by shifted day key, preserving the order
// in which days first appear in the (time-ascending) input.
func groupByDay(emotions []*models.Emotion) *CalendarData {
	index := make(map[string]int)
	data := &CalendarData{Emotions: []CalendarDay{}}

	for _, e := range emotions {
		key := dateKey(e.CreatedAt)
		i, ok := index[key]
		if !ok {
			i = len(data.Emotions)
			index[key] = i
			data.Emotions = append(data.Emotions, CalendarDay{Date: key})
		}
		data.Emotions[i].Emotions = append(data.Emotions[i].Emotions, CalendarEmotion{
			Type:        e.EmotionType,
			Time:        displayTime(e.CreatedAt),
			Intensity:   e.Intensity,
			TextMessage: e.TextMessage,
			VoiceURL:    e.VoiceURL,
		})
	}

	return data
}
