package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticketdesk/internal/domain"
	apperrors "github.com/spec-kit/ticketdesk/pkg/util/errorutil"
)

// RequireRole ensures the authenticated actor holds one of the allowed roles.
// With no roles given any authenticated actor passes.
func RequireRole(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		actor, ok := ActorFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[actor.Role]; !exists {
			return apperrors.NewPermissionDenied("insufficient role", map[string]any{"role": string(actor.Role)})
		}
		return c.Next()
	}
}
