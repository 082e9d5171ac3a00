package services

import (
	"context"

	"makeusbetter-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// Profile is the current user's own view of their account.
type Profile struct {
	ID               string  `json:"id"`
	Username         string  `json:"username"`
	Name             string  `json:"name"`
	AvatarURL        *string `json:"avatarUrl,omitempty"`
	IsCreator        bool    `json:"isCreator"`
	IsPaired         bool    `json:"isPaired"`
	PartnerName      *string `json:"partnerName,omitempty"`
	PartnerAvatarURL *string `json:"partnerAvatarUrl,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

// UserService handles profile, push-token and avatar updates.
type UserService struct {
	userRepo *repository.UserRepository
	media    *MediaService
}

// NewUserService creates a new user service
func NewUserService(userRepo *repository.UserRepository, media *MediaService) *UserService {
	return &UserService{
		userRepo: userRepo,
		media:    media,
	}
}

// GetProfile returns the user's profile including partner display data.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &Profile{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
		IsCreator: user.IsCreator,
		IsPaired:  user.Paired(),
		CreatedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}

	if user.Paired() {
		partner, err := s.userRepo.GetPartnerOf(ctx, userID)
		if err != nil {
			return nil, err
		}
		if partner != nil {
			profile.PartnerName = &partner.Name
			profile.PartnerAvatarURL = partner.AvatarURL
		}
	}

	return profile, nil
}

// UpdatePushToken registers or replaces the user's push endpoint. An
// empty token clears it.
func (s *UserService) UpdatePushToken(ctx context.Context, userID, pushToken string) error {
	var token *string
	if pushToken != "" {
		token = &pushToken
	}
	if err := s.userRepo.UpdatePushToken(ctx, userID, token); err != nil {
		return err
	}

	log.Info().Str("user_id", userID).Bool("cleared", token == nil).Msg("Push token updated")
	return nil
}

// UpdateAvatar uploads the image and stores its URL on the user.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, data []byte, contentType string) (string, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return "", err
	}

	avatarURL, err := s.media.UploadAvatar(ctx, userID, data, contentType)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateAvatarURL(ctx, userID, avatarURL); err != nil {
		return "", err
	}

	return avatarURL, nil
}
