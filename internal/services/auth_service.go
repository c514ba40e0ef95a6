package services

import (
	"context"
	"time"

	"github.com/estate-backoffice/backend/internal/apperr"
	"github.com/estate-backoffice/backend/internal/auth"
	"github.com/estate-backoffice/backend/internal/models"
	"github.com/estate-backoffice/backend/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AuthService struct {
	userRepo      *repositories.UserRepo
	jwtSecret     string
	jwtExpiration time.Duration
	log           *zap.Logger
}

func NewAuthService(userRepo *repositories.UserRepo, jwtSecret string, jwtExpiration time.Duration, log *zap.Logger) *AuthService {
	return &AuthService{userRepo: userRepo, jwtSecret: jwtSecret, jwtExpiration: jwtExpiration, log: log}
}

// Login verifies credentials and issues a token. The same error is returned
// for a missing user and a bad password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	if email == "" || password == "" {
		return nil, "", apperr.Validation("email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", apperr.Unauthorized("invalid credentials")
	}

	token, err := auth.GenerateJWT(s.jwtSecret, user.ID, user.Role, s.jwtExpiration)
	if err != nil {
		s.log.Error("token generation failed", zap.Error(err))
		return nil, "", apperr.Internal("could not issue token")
	}

	_ = s.userRepo.UpdateLastActive(ctx, user.ID)
	return user, token, nil
}

// Me returns the authenticated user's own profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperr.NotFound("user not found")
	}
	return user, nil
}
