package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/civiceye/internal/auth"
	"github.com/spec-kit/civiceye/internal/config"
	"github.com/spec-kit/civiceye/internal/domain"
)

// fakeSessionIssuer stands in for the Redis-backed store.
type fakeSessionIssuer struct {
	created   []*auth.Session
	destroyed []string
}

func (f *fakeSessionIssuer) Create(_ context.Context, subjectType domain.SubjectType, subjectID int64) (*auth.Session, error) {
	session := &auth.Session{
		ID:          uuid.NewString(),
		SubjectType: subjectType,
		SubjectID:   subjectID,
		CreatedAt:   time.Now(),
	}
	f.created = append(f.created, session)
	return session, nil
}

func (f *fakeSessionIssuer) Destroy(_ context.Context, sessionID string) error {
	f.destroyed = append(f.destroyed, sessionID)
	return nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) GenerateToken(subjectID int64, subject domain.SubjectType) (string, time.Time, error) {
	return string(subject) + "-token", time.Now().Add(time.Hour), nil
}

func newAuthServiceForTest(users *fakeUserRepo, authorities *fakeAuthorityRepo) (*AuthService, *fakeSessionIssuer) {
	sessions := &fakeSessionIssuer{}
	svc := NewAuthService(config.AuthConfig{BcryptCost: 4}, AuthDependencies{
		UserRepo:      users,
		AuthorityRepo: authorities,
		Sessions:      sessions,
		Tokens:        fakeTokenIssuer{},
	})
	return svc, sessions
}

func seedUser(t *testing.T, users *fakeUserRepo, username, email, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password, 4)
	require.NoError(t, err)
	require.NoError(t, users.Create(context.Background(), &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}))
}

func TestSignupUserDuplicateUsername(t *testing.T) {
	users := &fakeUserRepo{}
	svc, _ := newAuthServiceForTest(users, &fakeAuthorityRepo{})
	seedUser(t, users, "ada", "ada@example.com", "secret123")

	_, _, err := svc.SignupUser(context.Background(), "ada", "other@example.com", "secret123")
	requireDomainCode(t, err, "CONFLICT")
}

func TestSignupUserDuplicateEmail(t *testing.T) {
	users := &fakeUserRepo{}
	svc, _ := newAuthServiceForTest(users, &fakeAuthorityRepo{})
	seedUser(t, users, "ada", "ada@example.com", "secret123")

	_, _, err := svc.SignupUser(context.Background(), "grace", "ada@example.com", "secret123")
	requireDomainCode(t, err, "CONFLICT")
}

func TestSigninUserWrongPassword(t *testing.T) {
	users := &fakeUserRepo{}
	svc, _ := newAuthServiceForTest(users, &fakeAuthorityRepo{})
	seedUser(t, users, "ada", "ada@example.com", "secret123")

	_, _, err := svc.SigninUser(context.Background(), "ada", "wrong")
	requireDomainCode(t, err, "INVALID_CREDENTIALS")
}

func TestSigninUserUnknownIdentifier(t *testing.T) {
	svc, _ := newAuthServiceForTest(&fakeUserRepo{}, &fakeAuthorityRepo{})

	_, _, err := svc.SigninUser(context.Background(), "nobody", "whatever")
	requireDomainCode(t, err, "INVALID_CREDENTIALS")
}

func TestSigninAuthorityWrongPassword(t *testing.T) {
	authorities := &fakeAuthorityRepo{}
	hash, err := auth.HashPassword("admin123", 4)
	require.NoError(t, err)
	require.NoError(t, authorities.Create(context.Background(), &domain.Authority{
		Username:     "admin",
		Email:        "admin@civiceye.local",
		PasswordHash: hash,
	}))
	svc, _ := newAuthServiceForTest(&fakeUserRepo{}, authorities)

	_, _, err = svc.SigninAuthority(context.Background(), "admin", "nope")
	requireDomainCode(t, err, "INVALID_CREDENTIALS")

	_, _, err = svc.SigninAuthority(context.Background(), "ghost", "admin123")
	requireDomainCode(t, err, "INVALID_CREDENTIALS")
}

func TestSignupUserEstablishesSession(t *testing.T) {
	users := &fakeUserRepo{}
	svc, sessions := newAuthServiceForTest(users, &fakeAuthorityRepo{})

	user, result, err := svc.SignupUser(context.Background(), "ada", "ada@example.com", "secret123")
	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret123", user.PasswordHash)

	require.NotNil(t, result.Session)
	assert.Equal(t, domain.SubjectTypeUser, result.Session.SubjectType)
	assert.Equal(t, user.ID, result.Session.SubjectID)
	assert.Equal(t, "user-token", result.Token)
	assert.Len(t, sessions.created, 1)
}

func TestSigninUserByUsernameOrEmail(t *testing.T) {
	users := &fakeUserRepo{}
	svc, sessions := newAuthServiceForTest(users, &fakeAuthorityRepo{})
	seedUser(t, users, "ada", "ada@example.com", "secret123")

	for _, identifier := range []string{"ada", "ada@example.com"} {
		user, result, err := svc.SigninUser(context.Background(), identifier, "secret123")
		require.NoError(t, err, identifier)
		assert.Equal(t, "ada", user.Username)
		require.NotNil(t, result.Session)
		assert.Equal(t, user.ID, result.Session.SubjectID)
		assert.NotEmpty(t, result.Token)
	}
	assert.Len(t, sessions.created, 2)
}

func TestSigninAuthorityEstablishesSession(t *testing.T) {
	authorities := &fakeAuthorityRepo{}
	hash, err := auth.HashPassword("admin123", 4)
	require.NoError(t, err)
	require.NoError(t, authorities.Create(context.Background(), &domain.Authority{
		Username:     "admin",
		Email:        "admin@civiceye.local",
		PasswordHash: hash,
	}))
	svc, sessions := newAuthServiceForTest(&fakeUserRepo{}, authorities)

	authority, result, err := svc.SigninAuthority(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	require.NotNil(t, result.Session)
	assert.Equal(t, domain.SubjectTypeAuthority, result.Session.SubjectType)
	assert.Equal(t, authority.ID, result.Session.SubjectID)
	assert.Equal(t, "authority-token", result.Token)
	require.Len(t, sessions.created, 1)
}

func TestSignoutDestroysSession(t *testing.T) {
	svc, sessions := newAuthServiceForTest(&fakeUserRepo{}, &fakeAuthorityRepo{})

	require.NoError(t, svc.Signout(context.Background(), "sess-1"))
	assert.Equal(t, []string{"sess-1"}, sessions.destroyed)

	// blank session IDs are a no-op
	require.NoError(t, svc.Signout(context.Background(), ""))
	assert.Len(t, sessions.destroyed, 1)
}
