package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/survey-share/internal/domain"
	apperrors "github.com/spec-kit/survey-share/pkg/util"
)

// RequireIssuer ensures the caller is authenticated and, when roles are given,
// holds one of them.
func RequireIssuer(allowed ...domain.IssuerRole) fiber.Handler {
	allowedSet := make(map[domain.IssuerRole]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[principal.Issuer.Role]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
