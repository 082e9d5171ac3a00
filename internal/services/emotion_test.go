package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"makeusbetter-backend/internal/models"
	"makeusbetter-backend/internal/repository"
)

// fakeEmotionStore is an in-memory EmotionStore. It records the last
// queried range so tests can check day boundary computation.
type fakeEmotionStore struct {
	emotions []*models.Emotion
	lastFrom time.Time
	lastTo   time.Time
}

func (s *fakeEmotionStore) Create(_ context.Context, emotion *models.Emotion) error {
	s.emotions = append(s.emotions, emotion)
	return nil
}

func (s *fakeEmotionStore) GetByUserAndRange(_ context.Context, userID string, from, to time.Time) ([]*models.Emotion, error) {
	s.lastFrom, s.lastTo = from, to
	var matched []*models.Emotion
	for _, e := range s.emotions {
		if e.UserID != userID {
			continue
		}
		if e.CreatedAt.Before(from) || e.CreatedAt.After(to) {
			continue
		}
		matched = append(matched, e)
	}
	return matched, nil
}

func newTestEmotionService(emotions *fakeEmotionStore, users *fakeUserStore) *EmotionService {
	pairSvc := newTestPairService(users)
	return NewEmotionService(emotions, users, pairSvc, NoopNotifier{}, nil)
}

func mustParse(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("failed to parse %q: %v", value, err)
	}
	return ts
}

func strptr(s string) *string { return &s }

func intptr(i int) *int { return &i }

func TestResolveIntensity(t *testing.T) {
	tests := []struct {
		name      string
		emotion   models.EmotionType
		intensity *int
		want      int
		wantErr   error
	}{
		{"default when omitted", models.EmotionJoy, nil, 50, nil},
		{"explicit value", models.EmotionSadness, intptr(73), 73, nil},
		{"lower bound", models.EmotionFear, intptr(1), 1, nil},
		{"upper bound", models.EmotionAnger, intptr(100), 100, nil},
		{"below bound", models.EmotionJoy, intptr(0), 0, ErrInvalidIntensity},
		{"above bound", models.EmotionJoy, intptr(101), 0, ErrInvalidIntensity},
		{"negative", models.EmotionTrust, intptr(-5), 0, ErrInvalidIntensity},
		{"unknown category", models.EmotionType("bored"), intptr(50), 0, ErrInvalidEmotion},
		{"empty category", models.EmotionType(""), nil, 0, ErrInvalidEmotion},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveIntensity(tt.emotion, tt.intensity)
			if err != tt.wantErr {
				t.Fatalf("resolveIntensity() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("resolveIntensity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDayRangeUTC(t *testing.T) {
	tests := []struct {
		name     string
		day      string // date at the display offset
		wantFrom string
		wantTo   string
	}{
		{
			name:     "ordinary day",
			day:      "2024-01-16",
			wantFrom: "2024-01-15T17:00:00Z",
			wantTo:   "2024-01-16T16:59:59.999Z",
		},
		{
			name:     "leap day",
			day:      "2024-02-29",
			wantFrom: "2024-02-28T17:00:00Z",
			wantTo:   "2024-02-29T16:59:59.999Z",
		},
		{
			name:     "year boundary",
			day:      "2024-01-01",
			wantFrom: "2023-12-31T17:00:00Z",
			wantTo:   "2024-01-01T16:59:59.999Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day, err := time.ParseInLocation("2006-01-02", tt.day, displayZone)
			if err != nil {
				t.Fatal(err)
			}
			from, to := dayRangeUTC(day)
			if !from.Equal(mustParse(t, tt.wantFrom)) {
				t.Errorf("from = %v, want %v", from, tt.wantFrom)
			}
			if !to.Equal(mustParse(t, tt.wantTo)) {
				t.Errorf("to = %v, want %v", to, tt.wantTo)
			}
		})
	}
}

// An emotion created at 17:30Z on Jan 15 is 00:30 on Jan 16 at the
// display offset, so it belongs to the Jan 16 bucket, not Jan 15.
func TestDayBucketingAcrossMidnight(t *testing.T) {
	created := mustParse(t, "2024-01-15T17:30:00Z")

	if got := dateKey(created); got != "2024-01-16" {
		t.Errorf("dateKey = %q, want %q", got, "2024-01-16")
	}
	if got := displayTime(created); got != "00:30" {
		t.Errorf("displayTime = %q, want %q", got, "00:30")
	}

	jan16, _ := time.ParseInLocation("2006-01-02", "2024-01-16", displayZone)
	from, to := dayRangeUTC(jan16)
	if created.Before(from) || created.After(to) {
		t.Errorf("instant %v not inside Jan 16 range [%v, %v]", created, from, to)
	}

	jan15, _ := time.ParseInLocation("2006-01-02", "2024-01-15", displayZone)
	_, to = dayRangeUTC(jan15)
	if !created.After(to) {
		t.Errorf("instant %v should fall after the Jan 15 range ending %v", created, to)
	}
}

func TestMonthRangeUTC(t *testing.T) {
	tests := []struct {
		name     string
		year     int
		month    time.Month
		wantFrom string
		wantTo   string
	}{
		{
			name:     "leap february",
			year:     2024,
			month:    time.February,
			wantFrom: "2024-01-31T17:00:00Z",
			wantTo:   "2024-02-29T16:59:59.999Z",
		},
		{
			name:     "non-leap february",
			year:     2023,
			month:    time.February,
			wantFrom: "2023-01-31T17:00:00Z",
			wantTo:   "2023-02-28T16:59:59.999Z",
		},
		{
			name:     "thirty-one day month",
			year:     2024,
			month:    time.December,
			wantFrom: "2024-11-30T17:00:00Z",
			wantTo:   "2024-12-31T16:59:59.999Z",
		},
		{
			name:     "thirty day month",
			year:     2024,
			month:    time.April,
			wantFrom: "2024-03-31T17:00:00Z",
			wantTo:   "2024-04-30T16:59:59.999Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from, to := monthRangeUTC(tt.year, tt.month)
			if !from.Equal(mustParse(t, tt.wantFrom)) {
				t.Errorf("from = %v, want %v", from, tt.wantFrom)
			}
			if !to.Equal(mustParse(t, tt.wantTo)) {
				t.Errorf("to = %v, want %v", to, tt.wantTo)
			}
		})
	}
}

func TestDisplayTimeZeroPadding(t *testing.T) {
	tests := []struct {
		utc  string
		want string
	}{
		{"2024-06-01T00:05:00Z", "07:05"},
		{"2024-06-01T17:00:00Z", "00:00"},
		{"2024-06-01T02:09:59Z", "09:09"},
		{"2024-06-01T16:59:59Z", "23:59"},
	}

	for _, tt := range tests {
		if got := displayTime(mustParse(t, tt.utc)); got != tt.want {
			t.Errorf("displayTime(%s) = %q, want %q", tt.utc, got, tt.want)
		}
	}
}

func TestGroupByDay(t *testing.T) {
	emotions := []*models.Emotion{
		{
			EmotionType: models.EmotionJoy,
			Intensity:   80,
			CreatedAt:   mustParse(t, "2024-02-01T01:00:00Z"), // Feb 1, 08:00 shifted
		},
		{
			EmotionType: models.EmotionSadness,
			Intensity:   30,
			TextMessage: strptr("long day"),
			CreatedAt:   mustParse(t, "2024-02-01T10:00:00Z"), // Feb 1, 17:00 shifted
		},
		{
			EmotionType: models.EmotionTrust,
			Intensity:   50,
			CreatedAt:   mustParse(t, "2024-02-01T17:30:00Z"), // crosses into Feb 2
		},
		{
			EmotionType: models.EmotionAnger,
			Intensity:   90,
			CreatedAt:   mustParse(t, "2024-02-02T05:00:00Z"), // Feb 2, 12:00 shifted
		},
	}

	data := groupByDay(emotions)

	if len(data.Emotions) != 2 {
		t.Fatalf("got %d day groups, want 2", len(data.Emotions))
	}

	first := data.Emotions[0]
	if first.Date != "2024-02-01" {
		t.Errorf("first group date = %q, want 2024-02-01", first.Date)
	}
	if len(first.Emotions) != 2 {
		t.Fatalf("first group has %d emotions, want 2", len(first.Emotions))
	}
	if first.Emotions[0].Type != models.EmotionJoy || first.Emotions[0].Time != "08:00" {
		t.Errorf("first entry = %+v, want joy at 08:00", first.Emotions[0])
	}
	if first.Emotions[1].TextMessage == nil || *first.Emotions[1].TextMessage != "long day" {
		t.Errorf("second entry text = %v, want %q", first.Emotions[1].TextMessage, "long day")
	}

	second := data.Emotions[1]
	if second.Date != "2024-02-02" {
		t.Errorf("second group date = %q, want 2024-02-02", second.Date)
	}
	if len(second.Emotions) != 2 {
		t.Fatalf("second group has %d emotions, want 2", len(second.Emotions))
	}
	if second.Emotions[0].Type != models.EmotionTrust || second.Emotions[0].Time != "00:30" {
		t.Errorf("shifted entry = %+v, want trust at 00:30", second.Emotions[0])
	}
}

func TestGroupByDayEmpty(t *testing.T) {
	data := groupByDay(nil)
	if data == nil || data.Emotions == nil {
		t.Fatal("groupByDay(nil) should return an empty, non-nil group list")
	}
	if len(data.Emotions) != 0 {
		t.Errorf("got %d groups, want 0", len(data.Emotions))
	}
}

func TestGetEmotionsForDay(t *testing.T) {
	ctx := context.Background()
	store := &fakeEmotionStore{
		emotions: []*models.Emotion{
			{
				ID:          "e1",
				UserID:      "u1",
				EmotionType: models.EmotionJoy,
				Intensity:   80,
				CreatedAt:   mustParse(t, "2024-01-15T17:30:00Z"), // Jan 16 00:30 at display offset
			},
			{
				ID:          "e2",
				UserID:      "u1",
				EmotionType: models.EmotionSadness,
				Intensity:   30,
				CreatedAt:   mustParse(t, "2024-01-15T10:00:00Z"), // Jan 15 17:00 at display offset
			},
			{
				ID:          "e3",
				UserID:      "u2",
				EmotionType: models.EmotionAnger,
				Intensity:   50,
				CreatedAt:   mustParse(t, "2024-01-15T17:40:00Z"),
			},
		},
	}
	svc := newTestEmotionService(store, newFakeUserStore(testUser("u1", "Alice")))

	got, err := svc.GetEmotionsForDay(ctx, "u1", "2024-01-16")
	if err != nil {
		t.Fatalf("GetEmotionsForDay() error = %v", err)
	}

	wantFrom := mustParse(t, "2024-01-15T17:00:00Z")
	if !store.lastFrom.Equal(wantFrom) {
		t.Errorf("queried from = %v, want %v", store.lastFrom, wantFrom)
	}
	wantTo := mustParse(t, "2024-01-16T16:59:59.999Z")
	if !store.lastTo.Equal(wantTo) {
		t.Errorf("queried to = %v, want %v", store.lastTo, wantTo)
	}

	if len(got) != 1 {
		t.Fatalf("got %d emotions, want 1", len(got))
	}
	if got[0].ID != "e1" || got[0].Time != "00:30" {
		t.Errorf("got %s at %s, want e1 at 00:30", got[0].ID, got[0].Time)
	}

	if _, err := svc.GetEmotionsForDay(ctx, "u1", "16-01-2024"); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("GetEmotionsForDay() with malformed date error = %v, want ErrInvalidDate", err)
	}
}

func TestRecordEmotion(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults intensity when omitted", func(t *testing.T) {
		store := &fakeEmotionStore{}
		svc := newTestEmotionService(store, newFakeUserStore(testUser("u1", "Alice")))

		result, err := svc.RecordEmotion(ctx, "u1", CreateEmotionInput{EmotionType: models.EmotionJoy})
		if err != nil {
			t.Fatalf("RecordEmotion() error = %v", err)
		}
		if !result.Success || result.EmotionID == "" {
			t.Errorf("RecordEmotion() = %+v, want success with id", result)
		}
		if len(store.emotions) != 1 {
			t.Fatalf("stored %d emotions, want 1", len(store.emotions))
		}
		stored := store.emotions[0]
		if stored.Intensity != defaultIntensity {
			t.Errorf("stored intensity = %d, want %d", stored.Intensity, defaultIntensity)
		}
		if stored.CreatedAt.Location() != time.UTC {
			t.Errorf("stored timestamp location = %v, want UTC", stored.CreatedAt.Location())
		}
	})

	t.Run("rejects out-of-range intensity", func(t *testing.T) {
		svc := newTestEmotionService(&fakeEmotionStore{}, newFakeUserStore(testUser("u1", "Alice")))
		input := CreateEmotionInput{EmotionType: models.EmotionJoy, Intensity: intptr(0)}
		if _, err := svc.RecordEmotion(ctx, "u1", input); !errors.Is(err, ErrInvalidIntensity) {
			t.Errorf("RecordEmotion() error = %v, want ErrInvalidIntensity", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := newTestEmotionService(&fakeEmotionStore{}, newFakeUserStore())
		input := CreateEmotionInput{EmotionType: models.EmotionJoy}
		if _, err := svc.RecordEmotion(ctx, "nobody", input); !errors.Is(err, repository.ErrUserNotFound) {
			t.Errorf("RecordEmotion() error = %v, want ErrUserNotFound", err)
		}
	})
}

func TestEmotionNotification(t *testing.T) {
	avatar := "https://cdn.example.com/a.jpg"
	user := &models.User{ID: "u1", Name: "Alice", AvatarURL: &avatar}

	tests := []struct {
		name      string
		emotion   *models.Emotion
		wantTitle string
		wantBody  string
	}{
		{
			name: "without text",
			emotion: &models.Emotion{
				ID:          "e1",
				EmotionType: models.EmotionJoy,
				Intensity:   80,
			},
			wantTitle: "Alice is feeling joyful 😊",
			wantBody:  "Intensity: 80%",
		},
		{
			name: "with text",
			emotion: &models.Emotion{
				ID:          "e2",
				EmotionType: models.EmotionSadness,
				Intensity:   30,
				TextMessage: strptr("missing you"),
			},
			wantTitle: "Alice is feeling sad 😢",
			wantBody:  `"missing you" - Intensity: 30%`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := emotionNotification(user, tt.emotion)
			if n.Title != tt.wantTitle {
				t.Errorf("title = %q, want %q", n.Title, tt.wantTitle)
			}
			if n.Body != tt.wantBody {
				t.Errorf("body = %q, want %q", n.Body, tt.wantBody)
			}
			if n.ImageURL != avatar {
				t.Errorf("imageURL = %q, want %q", n.ImageURL, avatar)
			}
			if n.Data["emotionId"] != tt.emotion.ID || n.Data["userId"] != user.ID {
				t.Errorf("data = %v, want emotionId %q and userId %q", n.Data, tt.emotion.ID, user.ID)
			}
			if n.Data["type"] != "emotion" {
				t.Errorf("data type = %q, want emotion", n.Data["type"])
			}
		})
	}
}
