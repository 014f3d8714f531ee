package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketdesk/internal/domain"
	"github.com/spec-kit/ticketdesk/internal/observability"
	"github.com/spec-kit/ticketdesk/internal/repository"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

const (
	actorKey  = "auth_actor"
	claimsKey = "auth_claims"
)

// AuthMiddleware validates bearer tokens and loads the acting user.
type AuthMiddleware struct {
	tokens  *TokenManager
	users   repository.UserRepository
	revoked Revocations
	logger  *zap.Logger
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository, revoked Revocations, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, revoked: revoked, logger: logger}
}

// Handle enforces authentication for protected routes. The role is read from
// the user record so role changes and deletions apply to live tokens.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.UserContext(), claims.ID)
		if err != nil {
			m.logger.Warn("revocation lookup failed", zap.String("jti", claims.ID), zap.Error(err))
			return apperrors.NewInternalError(err)
		}
		if revoked {
			return apperrors.NewUnauthorized("token revoked")
		}
	}

	user, err := m.users.GetByUsername(c.UserContext(), claims.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("user not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(actorKey, user.Actor())
	c.Locals(claimsKey, claims)
	c.Locals(observability.ActorLogKey, user.Username)
	return c.Next()
}

// ActorFromContext retrieves the authenticated identity.
func ActorFromContext(c *fiber.Ctx) (domain.Actor, bool) {
	actor, ok := c.Locals(actorKey).(domain.Actor)
	if !ok || actor.IsZero() {
		return domain.Actor{}, false
	}
	return actor, true
}

// ClaimsFromContext retrieves the claims of the presented token.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok
}
