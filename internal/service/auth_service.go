package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// AuthService coordinates login, logout and password flows.
type AuthService struct {
	users       repository.UserRepository
	tokenMgr    *auth.TokenManager
	revocations auth.Revocations
	clock       clock.Clock
	bcryptCost  int
	logger      *zap.Logger
}

// AuthDependencies encapsulates collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	TokenManager *auth.TokenManager
	Revocations  auth.Revocations
	Clock        clock.Clock
	BcryptCost   int
	Logger       *zap.Logger
}

// LoginResult is an issued access token.
type LoginResult struct {
	AccessToken string
	Token       domain.Token
	User        *domain.User
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:       deps.UserRepo,
		tokenMgr:    deps.TokenManager,
		revocations: deps.Revocations,
		clock:       orRealClock(deps.Clock),
		bcryptCost:  deps.BcryptCost,
		logger:      logger,
	}
}

// Authenticate returns the user matching the credentials.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = auth.VerifyPassword("", password)
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	switch err := auth.VerifyPassword(user.PasswordHash, password); {
	case errors.Is(err, auth.ErrPasswordMismatch):
		return nil, apperrors.NewUnauthorized("invalid credentials")
	case err != nil:
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

// Login authenticates and issues an access token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.Authenticate(ctx, username, password)
	if err != nil {
		s.logger.Info("login rejected", zap.String("username", username))
		return nil, err
	}
	raw, token, err := s.tokenMgr.GenerateToken(user.Actor())
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("login", zap.String("username", user.Username), zap.String("jti", token.ID))
	return &LoginResult{AccessToken: raw, Token: token, User: user}, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token domain.Token) error {
	if s.revocations == nil {
		return nil
	}
	ttl := token.ExpiresAt.Sub(s.clock.Now())
	if err := s.revocations.Revoke(ctx, token.ID, ttl); err != nil {
		return apperrors.NewInternalError(err)
	}
	s.logger.Info("logout", zap.String("username", token.Username), zap.String("jti", token.ID))
	return nil
}

// Me returns the account of the authenticated actor.
func (s *AuthService) Me(ctx context.Context, actor domain.Actor) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, actor.Username)
	if err != nil {
		return nil, mapStoreError(err, "user", map[string]any{"username": actor.Username})
	}
	return user, nil
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor domain.Actor, currentPassword, newPassword string) error {
	if _, err := s.Authenticate(ctx, actor.Username, currentPassword); err != nil {
		return err
	}
	if strings.TrimSpace(newPassword) == "" {
		return apperrors.NewValidationError("new password must not be empty", map[string]any{"field": "new_password"})
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	if err := s.users.UpdatePassword(ctx, actor.Username, hash); err != nil {
		return mapStoreError(err, "user", map[string]any{"username": actor.Username})
	}
	s.logger.Info("password changed", zap.String("username", actor.Username))
	return nil
}

// TokenManager exposes token manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
