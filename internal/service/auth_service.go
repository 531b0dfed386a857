package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/civiceye/internal/auth"
	"github.com/spec-kit/civiceye/internal/config"
	"github.com/spec-kit/civiceye/internal/domain"
	"github.com/spec-kit/civiceye/internal/repository"
	apperrors "github.com/spec-kit/civiceye/pkg/util"
)

// AuthResult bundles the artifacts of a successful signup/signin: the session
// backing the cookie plus a bearer token for cookie-less API clients.
type AuthResult struct {
	Session *auth.Session
	Token   string
}

// SessionIssuer is the slice of the session store this service needs:
// creating a session on signin and destroying it on signout.
type SessionIssuer interface {
	Create(ctx context.Context, subjectType domain.SubjectType, subjectID int64) (*auth.Session, error)
	Destroy(ctx context.Context, sessionID string) error
}

// TokenIssuer mints bearer tokens for clients that cannot hold cookies.
type TokenIssuer interface {
	GenerateToken(subjectID int64, subject domain.SubjectType) (string, time.Time, error)
}

// AuthService coordinates signup and signin flows for users and authorities.
type AuthService struct {
	users       repository.UserRepository
	authorities repository.AuthorityRepository
	sessions    SessionIssuer
	tokens      TokenIssuer
	bcryptCost  int
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	AuthorityRepo repository.AuthorityRepository
	Sessions      SessionIssuer
	Tokens        TokenIssuer
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:       deps.UserRepo,
		authorities: deps.AuthorityRepo,
		sessions:    deps.Sessions,
		tokens:      deps.Tokens,
		bcryptCost:  cfg.BcryptCost,
	}
}

// SignupUser creates a citizen account and signs it in immediately.
func (s *AuthService) SignupUser(ctx context.Context, username, email, password string) (*domain.User, *AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return nil, nil, apperrors.NewConflict("username already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, nil, apperrors.NewConflict("email already exists", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the unique constraint is the backstop for concurrent signups
		return nil, nil, apperrors.MapError(err)
	}

	result, err := s.establish(ctx, domain.SubjectTypeUser, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, result, nil
}

// SigninUser authenticates a citizen by username or email.
func (s *AuthService) SigninUser(ctx context.Context, identifier, password string) (*domain.User, *AuthResult, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, identifier)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	result, err := s.establish(ctx, domain.SubjectTypeUser, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, result, nil
}

// SigninAuthority authenticates a staff account.
func (s *AuthService) SigninAuthority(ctx context.Context, username, password string) (*domain.Authority, *AuthResult, error) {
	authority, err := s.authorities.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewInvalidCredentials()
		}
		return nil, nil, err
	}
	if err := auth.ComparePassword(authority.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials()
	}

	result, err := s.establish(ctx, domain.SubjectTypeAuthority, authority.ID)
	if err != nil {
		return nil, nil, err
	}
	return authority, result, nil
}

// Signout destroys the server-side session.
func (s *AuthService) Signout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Destroy(ctx, sessionID)
}

func (s *AuthService) establish(ctx context.Context, subjectType domain.SubjectType, subjectID int64) (*AuthResult, error) {
	session, err := s.sessions.Create(ctx, subjectType, subjectID)
	if err != nil {
		return nil, err
	}
	token, _, err := s.tokens.GenerateToken(subjectID, subjectType)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Session: session, Token: token}, nil
}
