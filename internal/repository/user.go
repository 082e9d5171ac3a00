package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"makeusbetter-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, username, name, pin_hash, push_token, avatar_url, pair_code, is_creator, partner_id, paired_at, created_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Name, &user.PinHash,
		&user.PushToken, &user.AvatarURL, &user.PairCode,
		&user.IsCreator, &user.PartnerID, &user.PairedAt, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, username, name, pin_hash, is_creator, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Username, user.Name, user.PinHash, user.IsCreator, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by username: %w", err)
	}
	return user, nil
}

// GetPartnerOf resolves the partner row of a user, or nil when the user
// has no partner.
func (r *UserRepository) GetPartnerOf(ctx context.Context, userID string) (*models.User, error) {
	query := `
		SELECT p.id, p.username, p.name, p.pin_hash, p.push_token, p.avatar_url,
		       p.pair_code, p.is_creator, p.partner_id, p.paired_at, p.created_at
		FROM users u
		JOIN users p ON p.id = u.partner_id
		WHERE u.id = $1
	`
	partner, err := scanUser(r.db.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get partner: %w", err)
	}
	return partner, nil
}

// WaitingCodeExists checks whether a code is currently held by a user in
// waiting state. Uniqueness only matters among waiting users: a code may
// recur on paired rows, where it is no longer a lookup key.
func (r *UserRepository) WaitingCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE pair_code = $1 AND is_creator AND partner_id IS NULL)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// SetPairCode puts the user into waiting state with the given code. The
// partial unique index on waiting codes rejects a concurrent createPair
// that generated the same code; that surfaces as ErrPairCodeTaken so the
// caller can re-roll.
func (r *UserRepository) SetPairCode(ctx context.Context, userID, code string) error {
	query := `UPDATE users SET pair_code = $1, is_creator = TRUE WHERE id = $2`
	result, err := r.db.Exec(ctx, query, code, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPairCodeTaken
		}
		return fmt.Errorf("failed to set pair code: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CompletePairing links the joining user to the waiting user holding the
// given code. All reads and writes run in one transaction with row locks
// on both users, so two joiners racing on the same code serialize: the
// second observes the committed partner and fails with ErrCodeConsumed.
// Returns the waiting user and the pairing timestamp.
func (r *UserRepository) CompletePairing(ctx context.Context, joinerID, code string) (*models.User, time.Time, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	joiner, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, joinerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, time.Time{}, ErrUserNotFound
		}
		return nil, time.Time{}, fmt.Errorf("failed to lock joining user: %w", err)
	}
	if joiner.Paired() {
		return nil, time.Time{}, ErrAlreadyPaired
	}

	// A consumed code may have been re-rolled by a newer waiting user;
	// prefer the row that is still waiting so the stale holder does not
	// shadow it.
	waiting, err := scanUser(tx.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE pair_code = $1 AND is_creator
		 ORDER BY (partner_id IS NULL) DESC
		 LIMIT 1
		 FOR UPDATE`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, time.Time{}, ErrCodeNotFound
		}
		return nil, time.Time{}, fmt.Errorf("failed to lock waiting user: %w", err)
	}
	if waiting.ID == joiner.ID {
		return nil, time.Time{}, ErrSelfPair
	}
	if waiting.Paired() {
		return nil, time.Time{}, ErrCodeConsumed
	}

	pairedAt := time.Now().UTC()

	// The joiner also gets the code so either row can redisplay it.
	_, err = tx.Exec(ctx,
		`UPDATE users SET partner_id = $1, is_creator = FALSE, pair_code = $2, paired_at = $3 WHERE id = $4`,
		waiting.ID, code, pairedAt, joiner.ID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to update joining user: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE users SET partner_id = $1, paired_at = $2 WHERE id = $3`,
		joiner.ID, pairedAt, waiting.ID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to update waiting user: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to commit pairing: %w", err)
	}

	return waiting, pairedAt, nil
}

// UpdatePushToken updates the push token for a user
func (r *UserRepository) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	query := `UPDATE users SET push_token = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, pushToken, userID)
	if err != nil {
		return fmt.Errorf("failed to update push token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateAvatarURL updates the avatar URL for a user
func (r *UserRepository) UpdateAvatarURL(ctx context.Context, userID, avatarURL string) error {
	query := `UPDATE users SET avatar_url = $1 WHERE id = $2`
	result, err := r.db.Exec(ctx, query, avatarURL, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar url: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}
