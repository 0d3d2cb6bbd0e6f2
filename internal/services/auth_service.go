package services

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"medishift_backend/internal/models"
	"medishift_backend/internal/repositories"
	"medishift_backend/pkg/utils"
)

// --- Custom Service Errors for Authentication ---
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrTokenGeneration    = errors.New("failed to generate token")
)

// --- Auth DTOs ---
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the authenticated user and their access token.
type AuthResponse struct {
	User        *models.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// --- AuthService Interface ---
type AuthService interface {
	LoginUser(req LoginRequest) (*AuthResponse, error)
	GetUserProfile(userID int64) (*models.User, error)
}

type authService struct {
	authRepo repositories.AuthRepository
}

// NewAuthService creates a new instance of AuthService.
func NewAuthService(authRepo repositories.AuthRepository) AuthService {
	return &authService{authRepo: authRepo}
}

// LoginUser verifies credentials and issues an access token. Inactive
// accounts and wrong passwords both come back as ErrInvalidCredentials so
// the response never reveals which part failed.
func (s *authService) LoginUser(req LoginRequest) (*AuthResponse, error) {
	user, storedHashedPassword, err := s.authRepo.FindUserByUsername(req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login attempt failed: %w", err)
	}

	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err = bcrypt.CompareHashAndPassword([]byte(storedHashedPassword), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := utils.GenerateAccessToken(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}

	return &AuthResponse{User: user, AccessToken: accessToken}, nil
}

// GetUserProfile retrieves a user's profile by their ID.
func (s *authService) GetUserProfile(userID int64) (*models.User, error) {
	user, err := s.authRepo.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to retrieve user profile: %w", err)
	}
	return user, nil
}
