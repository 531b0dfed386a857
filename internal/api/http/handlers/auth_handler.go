package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/civiceye/internal/api/dto"
	"github.com/spec-kit/civiceye/internal/auth"
	"github.com/spec-kit/civiceye/internal/config"
	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/service"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

// AuthHandler exposes signup/signin/signout endpoints for citizens and the
// authority signin endpoint.
type AuthHandler struct {
	auth *service.AuthService
	cfg  config.AuthConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cfg config.AuthConfig) *AuthHandler {
	return &AuthHandler{auth: authService, cfg: cfg}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("username, email, password required", nil)
	}

	user, result, err := h.auth.SignupUser(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, result.Session.ID)

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "User created successfully",
		"user":    userResponse(user),
		"token":   result.Token,
	})
}

// Signin handles POST /api/auth/signin. The username field accepts either a
// username or an email address.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	user, result, err := h.auth.SigninUser(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, result.Session.ID)

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    userResponse(user),
		"token":   result.Token,
	})
}

// AuthoritySignin handles POST /api/authority/signin.
func (h *AuthHandler) AuthoritySignin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	authority, result, err := h.auth.SigninAuthority(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	h.setSessionCookie(c, result.Session.ID)

	return c.JSON(fiber.Map{
		"message":   "Login successful",
		"authority": dto.AuthorityResponse{ID: authority.ID, Username: authority.Username},
		"token":     result.Token,
	})
}

// Signout handles POST /api/auth/signout.
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	if sessionID := c.Cookies(h.cfg.SessionCookieName); sessionID != "" {
		if err := h.auth.Signout(c.Context(), sessionID); err != nil {
			return err
		}
	}
	h.clearSessionCookie(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("not authenticated")
	}

	switch principal.SubjectType {
	case domain.SubjectTypeUser:
		return c.JSON(fiber.Map{
			"type": domain.SubjectTypeUser,
			"user": userResponse(principal.User),
		})
	case domain.SubjectTypeAuthority:
		return c.JSON(fiber.Map{
			"type": domain.SubjectTypeAuthority,
			"authority": dto.AuthorityResponse{
				ID:       principal.Authority.ID,
				Username: principal.Authority.Username,
				Email:    principal.Authority.Email,
			},
		})
	}
	return apperrors.NewUnauthorized("not authenticated")
}

func (h *AuthHandler) setSessionCookie(c *fiber.Ctx, sessionID string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    sessionID,
		Expires:  time.Now().Add(h.cfg.SessionTTL()),
		HTTPOnly: true,
		Secure:   h.cfg.SessionCookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.SessionCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.cfg.SessionCookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}
