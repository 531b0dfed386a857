package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civiceye/internal/domain"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

// RequireUser ensures a citizen session is present.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.SubjectType != domain.SubjectTypeUser || principal.User == nil {
			return apperrors.NewForbidden("user session required")
		}
		return c.Next()
	}
}

// RequireAuthority ensures an authority session is present.
func RequireAuthority() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.SubjectType != domain.SubjectTypeAuthority || principal.Authority == nil {
			return apperrors.NewForbidden("authority session required")
		}
		return c.Next()
	}
}
