package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"hostel/internal/auth"
	"hostel/internal/errors"
	"hostel/internal/model"
	"hostel/internal/repository"
)

const bcryptCost = 10

// TokenPair is an access token with the refresh token that renews it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, username, email, password string) (*TokenPair, *model.User, error)
	// Logout forgets the user's refresh token and revokes the access token
	// identified by accessTokenID until it would have expired.
	Logout(ctx context.Context, userID uuid.UUID, accessTokenID string, accessExpiresAt time.Time) error
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

type authService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
}

// NewAuthService creates a new authentication service.
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService, tokenStore auth.TokenStoreInterface) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
	}
}

// Login authenticates a user by username or email and issues new tokens.
func (s *authService) Login(ctx context.Context, username, email, password string) (*TokenPair, *model.User, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	email = strings.TrimSpace(email)
	if username == "" && email == "" {
		return nil, nil, errors.ErrValidation.WithDetails("username or email is required")
	}

	user, err := s.userRepo.FindByLogin(ctx, username, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errors.ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, errors.ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return tokens, user, nil
}

// Logout clears the stored refresh token and blacklists the access token.
func (s *authService) Logout(ctx context.Context, userID uuid.UUID, accessTokenID string, accessExpiresAt time.Time) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrUnauthenticated
		}
		return fmt.Errorf("find user: %w", err)
	}

	user.RefreshToken = nil
	user.Room = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}

	if accessTokenID != "" {
		if err := s.tokenStore.BlacklistAccessToken(ctx, accessTokenID, time.Until(accessExpiresAt)); err != nil {
			return fmt.Errorf("blacklist access token: %w", err)
		}
	}
	return nil
}

// Refresh rotates both tokens. The presented refresh token must be the one
// stored on the user, so every refresh token works once.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, errors.ErrUnauthenticated
	}

	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, errors.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		return nil, errors.ErrInvalidRefreshToken
	}

	return s.issueTokens(ctx, user)
}

// issueTokens signs a new token pair and stores the refresh token on the user.
func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenPair, error) {
	accessToken, err := s.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, errors.Internal("TOKEN_GENERATION_FAILED", "something went wrong while generating tokens")
	}
	refreshToken, err := s.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, errors.Internal("TOKEN_GENERATION_FAILED", "something went wrong while generating tokens")
	}

	user.RefreshToken = &refreshToken
	user.Room = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}
