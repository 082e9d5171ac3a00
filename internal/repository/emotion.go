package repository

import (
	"context"
	"fmt"
	"time"

	"makeusbetter-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EmotionRepository handles database operations for emotions. Emotions
// are insert-only: there is no update or delete path.
type EmotionRepository struct {
	db *pgxpool.Pool
}

// NewEmotionRepository creates a new emotion repository
func NewEmotionRepository(db *pgxpool.Pool) *EmotionRepository {
	return &EmotionRepository{db: db}
}

// Create creates a new emotion
func (r *EmotionRepository) Create(ctx context.Context, emotion *models.Emotion) error {
	query := `
		INSERT INTO emotions (id, user_id, emotion_type, intensity, text_message, voice_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		emotion.ID, emotion.UserID, emotion.EmotionType, emotion.Intensity,
		emotion.TextMessage, emotion.VoiceURL, emotion.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create emotion: %w", err)
	}
	return nil
}

// GetByUserAndRange retrieves a user's emotions whose creation time falls
// in [from, to], ordered ascending by time.
func (r *EmotionRepository) GetByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]*models.Emotion, error) {
	query := `
		SELECT id, user_id, emotion_type, intensity, text_message, voice_url, created_at
		FROM emotions
		WHERE user_id = $1 AND created_at >= $2 AND created_at <= $3
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get emotions: %w", err)
	}
	defer rows.Close()

	var emotions []*models.Emotion
	for rows.Next() {
		var emotion models.Emotion
		err := rows.Scan(
			&emotion.ID, &emotion.UserID, &emotion.EmotionType, &emotion.Intensity,
			&emotion.TextMessage, &emotion.VoiceURL, &emotion.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan emotion: %w", err)
		}
		emotions = append(emotions, &emotion)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating emotions: %w", err)
	}

	return emotions, nil
}
