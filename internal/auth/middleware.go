package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/repository"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller, resolved once per request and
// passed through the handler chain instead of ambient session state.
type Principal struct {
	SubjectType domain.SubjectType
	User        *domain.User
	Authority   *domain.Authority
}

// AuthMiddleware resolves session cookies (or bearer tokens) into principals.
type AuthMiddleware struct {
	sessions    *SessionStore
	tokens      *TokenManager
	cookieName  string
	users       repository.UserRepository
	authorities repository.AuthorityRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(sessions *SessionStore, tokens *TokenManager, cookieName string, users repository.UserRepository, authorities repository.AuthorityRepository) *AuthMiddleware {
	return &AuthMiddleware{
		sessions:    sessions,
		tokens:      tokens,
		cookieName:  cookieName,
		users:       users,
		authorities: authorities,
	}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	principal, err := m.resolve(c)
	if err != nil {
		return err
	}
	if principal == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional resolves the principal when credentials are present but lets
// anonymous requests through. Used by read endpoints that are public.
func (m *AuthMiddleware) Optional(c *fiber.Ctx) error {
	principal, err := m.resolve(c)
	if err == nil && principal != nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *AuthMiddleware) resolve(c *fiber.Ctx) (*Principal, error) {
	if sessionID := c.Cookies(m.cookieName); sessionID != "" {
		session, err := m.sessions.Get(c.Context(), sessionID)
		if err == nil {
			return m.loadSubject(c, session.SubjectType, session.SubjectID)
		}
		if !errors.Is(err, ErrSessionNotFound) {
			return nil, apperrors.MapError(err)
		}
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, nil
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil, apperrors.NewUnauthorized("invalid authorization header")
	}
	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	subjectID, err := claims.SubjectID()
	if err != nil {
		return nil, apperrors.NewUnauthorized("invalid token subject")
	}
	return m.loadSubject(c, claims.Subject, subjectID)
}

func (m *AuthMiddleware) loadSubject(c *fiber.Ctx, subjectType domain.SubjectType, subjectID int64) (*Principal, error) {
	principal := &Principal{SubjectType: subjectType}

	switch subjectType {
	case domain.SubjectTypeUser:
		user, err := m.users.GetByID(c.Context(), subjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized("user not found")
			}
			return nil, apperrors.MapError(err)
		}
		principal.User = user
	case domain.SubjectTypeAuthority:
		authority, err := m.authorities.GetByID(c.Context(), subjectID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewUnauthorized("authority not found")
			}
			return nil, apperrors.MapError(err)
		}
		principal.Authority = authority
	default:
		return nil, apperrors.NewUnauthorized("unknown subject")
	}
	return principal, nil
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
