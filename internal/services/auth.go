package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"makeusbetter-backend/internal/models"
	"makeusbetter-backend/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const jwtExpDays = 365

// Validation and authentication failures raised by the service layer.
var (
	ErrInvalidCredentials = errors.New("username or pin is incorrect")
	ErrInvalidUsername    = errors.New("username must be 3-100 characters")
	ErrInvalidPin         = errors.New("pin must be 4-12 digits")
	ErrInvalidName        = errors.New("name must be 1-100 characters")
)

// TokenClaims is the credential payload. The user id is carried as an
// explicit field rather than a loose claims map.
type TokenClaims struct {
	UserID string `json:"user_id"`
	jwt.RegisteredClaims
}

// AuthService handles registration, login and credential issuance.
type AuthService struct {
	userRepo  *repository.UserRepository
	jwtSecret string
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, jwtSecret string) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
	}
}

// RegisterResult is returned after a successful registration.
type RegisterResult struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Token    string `json:"token"`
}

// LoginResult is returned after a successful login. PairCode is echoed
// back so the client can redisplay an outstanding code.
type LoginResult struct {
	UserID   string  `json:"userId"`
	Username string  `json:"username"`
	Name     string  `json:"name"`
	IsPaired bool    `json:"isPaired"`
	PairCode *string `json:"pairCode,omitempty"`
	Token    string  `json:"token"`
}

// Register creates a new account. Usernames are stored lowercase and
// must be unique; the PIN is stored as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, username, name, pin string) (*RegisterResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if !validUsername(username) {
		return nil, ErrInvalidUsername
	}
	if !validName(name) {
		return nil, ErrInvalidName
	}
	if !validPin(pin) {
		return nil, ErrInvalidPin
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}

	user := &models.User{
		ID:        uuid.New().String(),
		Username:  username,
		Name:      name,
		PinHash:   string(pinHash),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		Token:    token,
	}, nil
}

// Login verifies the PIN and issues a fresh credential. Unknown username
// and wrong PIN are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, pin string) (*LoginResult, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)) != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &LoginResult{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.Name,
		IsPaired: user.Paired(),
		PairCode: user.PairCode,
		Token:    token,
	}, nil
}

// IssueToken mints a signed credential scoped to the user id.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.AddDate(0, 0, jwtExpDays)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken verifies a credential and returns the user id it is
// scoped to.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid || claims.UserID == "" {
		return "", fmt.Errorf("invalid token claims")
	}

	return claims.UserID, nil
}

// Length bounds are counted in runes so multibyte names are not
// penalized for their UTF-8 encoding.
func validUsername(username string) bool {
	n := utf8.RuneCountInString(username)
	return n >= 3 && n <= 100
}

func validName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= 100
}

func validPin(pin string) bool {
	if len(pin) < 4 || len(pin) > 12 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
