package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"makeusbetter-backend/internal/models"
	"makeusbetter-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

const (
	codeLength      = 6
	codeChars       = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeMaxAttempts = 10
)

// ErrInvalidCode is returned when a submitted pair code has the wrong
// shape before any lookup is attempted.
var ErrInvalidCode = errors.New("pair code must be 6 alphanumeric characters")

// TokenIssuer mints a bearer credential scoped to a user id. Satisfied
// by AuthService.
type TokenIssuer interface {
	IssueToken(userID string) (string, error)
}

// UserStore is the slice of the user repository the pairing and emotion
// services depend on. Satisfied by repository.UserRepository.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	WaitingCodeExists(ctx context.Context, code string) (bool, error)
	SetPairCode(ctx context.Context, userID, code string) error
	CompletePairing(ctx context.Context, joinerID, code string) (*models.User, time.Time, error)
	GetPartnerOf(ctx context.Context, userID string) (*models.User, error)
}

// PairService implements the pairing protocol: a user in waiting state
// holds a 6-character rendezvous code, a second user joins with it, and
// both rows are linked symmetrically in one transaction. A partnership,
// once formed, is never dissolved.
type PairService struct {
	userRepo UserStore
	tokens   TokenIssuer
	hub      *WSHub
}

// NewPairService creates a new pair service. hub may be nil when live
// events are disabled.
func NewPairService(userRepo UserStore, tokens TokenIssuer, hub *WSHub) *PairService {
	return &PairService{
		userRepo: userRepo,
		tokens:   tokens,
		hub:      hub,
	}
}

// CreatePairResult is returned by CreatePair.
type CreatePairResult struct {
	PairCode string `json:"pairCode"`
	UserID   string `json:"userId"`
	Token    string `json:"token"`
}

// JoinPairResult is returned by JoinPair.
type JoinPairResult struct {
	UserID      string `json:"userId"`
	PartnerID   string `json:"partnerId"`
	PartnerName string `json:"partnerName"`
	Token       string `json:"token"`
	PairCode    string `json:"pairCode"`
}

// PartnerInfo is returned by GetPartner. Partner fields are nil until a
// partnership exists; PairCode is set while waiting and kept afterwards
// for display.
type PartnerInfo struct {
	PartnerID        *string    `json:"partnerId"`
	PartnerName      *string    `json:"partnerName"`
	PartnerAvatarURL *string    `json:"partnerAvatarUrl,omitempty"`
	IsPaired         bool       `json:"isPaired"`
	PairCode         *string    `json:"pairCode"`
	PairedAt         *time.Time `json:"pairedAt"`
}

// CreatePair puts the user into waiting state under a freshly generated
// code and mints a fresh credential. Collisions with other waiting users
// are checked against live state and, as a second line of defence,
// rejected by the partial unique index on waiting codes; both cases
// re-roll.
func (s *PairService) CreatePair(ctx context.Context, userID string) (*CreatePairResult, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Paired() {
		return nil, repository.ErrAlreadyPaired
	}

	var code string
	for attempt := 0; attempt < codeMaxAttempts; attempt++ {
		code = generateCode()
		exists, err := s.userRepo.WaitingCodeExists(ctx, code)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		err = s.userRepo.SetPairCode(ctx, userID, code)
		if errors.Is(err, repository.ErrPairCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}

		token, err := s.tokens.IssueToken(userID)
		if err != nil {
			return nil, err
		}

		log.Info().
			Str("user_id", userID).
			Str("pair_code", code).
			Msg("Pair code created")

		return &CreatePairResult{
			PairCode: code,
			UserID:   userID,
			Token:    token,
		}, nil
	}

	return nil, fmt.Errorf("failed to generate unique pair code after %d attempts", codeMaxAttempts)
}

// JoinPair links the calling user to the waiting user holding the given
// code. Input is case-normalized to uppercase. The whole read-check-write
// sequence runs inside one transaction in the repository, which is what
// keeps two concurrent joiners on the same code from both succeeding.
func (s *PairService) JoinPair(ctx context.Context, userID, rawCode string) (*JoinPairResult, error) {
	code := NormalizeCode(rawCode)
	if !ValidCode(code) {
		return nil, ErrInvalidCode
	}

	partner, pairedAt, err := s.userRepo.CompletePairing(ctx, userID, code)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.IssueToken(userID)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID).
		Str("partner_id", partner.ID).
		Str("pair_code", code).
		Msg("Pair completed")

	if s.hub != nil {
		joiner, err := s.userRepo.GetByID(ctx, userID)
		if err == nil {
			s.hub.NotifyPairCompleted(partner.ID, PairCompletedEvent{
				PartnerID:   joiner.ID,
				PartnerName: joiner.Name,
				PairedAt:    pairedAt,
			})
		}
	}

	return &JoinPairResult{
		UserID:      userID,
		PartnerID:   partner.ID,
		PartnerName: partner.Name,
		Token:       token,
		PairCode:    code,
	}, nil
}

// GetPartner reports the pairing state of a user: the partner when one
// exists, the outstanding code while waiting, or neither.
func (s *PairService) GetPartner(ctx context.Context, userID string) (*PartnerInfo, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !user.Paired() {
		info := &PartnerInfo{IsPaired: false}
		if user.Waiting() {
			info.PairCode = user.PairCode
		}
		return info, nil
	}

	partner, err := s.userRepo.GetPartnerOf(ctx, userID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, fmt.Errorf("partner row missing for paired user %s", userID)
	}

	return &PartnerInfo{
		PartnerID:        &partner.ID,
		PartnerName:      &partner.Name,
		PartnerAvatarURL: partner.AvatarURL,
		IsPaired:         true,
		PairCode:         user.PairCode,
		PairedAt:         user.PairedAt,
	}, nil
}

// GetPartnerByUserID resolves the partner entity directly, or nil when
// the user has no partner. Used by the emotion service, not exposed as
// an endpoint.
func (s *PairService) GetPartnerByUserID(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetPartnerOf(ctx, userID)
}

// NormalizeCode trims whitespace and uppercases a submitted code.
func NormalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidCode reports whether a normalized code is 6 characters drawn from
// the A-Z0-9 alphabet.
func ValidCode(code string) bool {
	if len(code) != codeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(codeChars, r) {
			return false
		}
	}
	return true
}

// generateCode generates a random 6-character code
func generateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		code[i] = codeChars[n.Int64()]
	}
	return string(code)
}
