package service

import (
	"context"
	"strings"
	"time"

	"github.com/commentflow-api/internal/config"
	"github.com/commentflow-api/internal/models"
	"github.com/commentflow-api/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// authService is the concrete implementation of AuthService
type authService struct {
	userRepo repository.UserRepository
	cfg      config.AuthConfig
	log      zerolog.Logger
}

// newAuthService creates a new AuthService
func newAuthService(userRepo repository.UserRepository, cfg config.AuthConfig, log zerolog.Logger) *authService {
	return &authService{
		userRepo: userRepo,
		cfg:      cfg,
		log:      log.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account with a hashed password and a fresh extension
// credential
func (s *authService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrConflict
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:                 uuid.New().String(),
		Email:              email,
		Password:           string(hash),
		Name:               name,
		ExtensionToken:     uuid.New().String(),
		SubscriptionStatus: models.SubscriptionInactive,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login verifies credentials and issues a session token
func (s *authService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, ErrUnauthorized
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrUnauthorized
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": user.ID,
		"exp": time.Now().Add(s.cfg.TokenTTL).Unix(),
		"iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", nil, err
	}

	return signed, user, nil
}

// GetUser retrieves a user by id
func (s *authService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// RotateExtensionToken replaces the user's extension credential. The old
// credential stops resolving immediately.
func (s *authService) RotateExtensionToken(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()
	if err := s.userRepo.UpdateExtensionToken(ctx, userID, token); err != nil {
		return "", err
	}
	s.log.Info().Str("user_id", userID).Msg("Extension token rotated")
	return token, nil
}
