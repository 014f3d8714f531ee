package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/auth"
	"github.com/spec-kit/ticketdesk/internal/authz"
	"github.com/spec-kit/ticketdesk/internal/clock"
	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/events"
	"github.com/spec-kit/ticketdesk/internal/repository"
	"github.com/spec-kit/ticketdesk/internal/validation"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// UserService manages accounts.
type UserService struct {
	publisher
	users      repository.UserRepository
	clock      clock.Clock
	bcryptCost int
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
	Clock      clock.Clock
	BcryptCost int
	Logger     *zap.Logger
}

// CreateUserInput describes a new account.
type CreateUserInput struct {
	Username string
	Password string
	Role     domain.Role
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	clk := orRealClock(deps.Clock)
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		publisher:  publisher{dispatcher: deps.Dispatcher, clock: clk},
		users:      deps.UserRepo,
		clock:      clk,
		bcryptCost: deps.BcryptCost,
		logger:     logger,
	}
}

// CreateUser adds an account on behalf of an administrator.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, input CreateUserInput) (*domain.User, error) {
	if !authz.CanManageUsers(actor.Role) {
		return nil, apperrors.NewPermissionDenied("only administrators manage users", roleDetails(actor))
	}
	return s.RegisterUser(ctx, actor.Username, input)
}

// RegisterUser adds an account without an authorization check. It backs the
// bootstrap administrator and the command line; createdBy is only logged.
func (s *UserService) RegisterUser(ctx context.Context, createdBy string, input CreateUserInput) (*domain.User, error) {
	if err := validation.ValidateCredentials(input.Username, input.Password, input.Role); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Role:         input.Role,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, mapStoreError(err, "user", map[string]any{"username": input.Username})
	}

	s.logger.Info("user created",
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)),
		zap.String("actor", createdBy))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserCreated,
		Actor:   events.Actor{Username: createdBy},
		Payload: events.UserPayload{Username: user.Username, Role: user.Role},
	})
	return user, nil
}

// ListUsers returns every account ordered by username.
func (s *UserService) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !authz.CanManageUsers(actor.Role) {
		return nil, apperrors.NewPermissionDenied("only administrators manage users", roleDetails(actor))
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, mapStoreError(err, "user", nil)
	}
	return users, nil
}

// DeleteUser removes an account that no ticket refers to.
func (s *UserService) DeleteUser(ctx context.Context, actor domain.Actor, username string) error {
	if !authz.CanManageUsers(actor.Role) {
		return apperrors.NewPermissionDenied("only administrators manage users", roleDetails(actor))
	}
	if username == actor.Username {
		return apperrors.NewConflict("administrators cannot delete their own account", map[string]any{"username": username})
	}
	if err := s.users.Delete(ctx, username); err != nil {
		return mapStoreError(err, "user", map[string]any{"username": username})
	}

	s.logger.Info("user deleted", zap.String("username", username), zap.String("actor", actor.Username))
	s.publishEvent(ctx, events.Event{
		Type:    events.EventUserDeleted,
		Actor:   events.ActorFrom(actor),
		Payload: events.UserPayload{Username: username},
	})
	return nil
}

// EnsureBootstrapAdmin creates the default administrator when no
// administrator account exists yet. It reports whether an account was created.
func (s *UserService) EnsureBootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return false, mapStoreError(err, "user", nil)
	}
	for _, u := range users {
		if u.Role == domain.RoleAdministrator {
			return false, nil
		}
	}

	_, err = s.RegisterUser(ctx, "bootstrap", CreateUserInput{
		Username: username,
		Password: password,
		Role:     domain.RoleAdministrator,
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			return false, errors.New("bootstrap username is taken by a non-administrator account")
		}
		return false, err
	}
	s.logger.Warn("created default administrator; change its password", zap.String("username", username))
	return true, nil
}
