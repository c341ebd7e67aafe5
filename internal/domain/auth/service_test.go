package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mercato/internal/core/apperror"
	"mercato/internal/core/id"
)

type fakeUserRepo struct {
	byEmail map[string]*User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, userID id.ID) (*User, error) {
	for _, u := range r.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID)
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *User) error {
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeUserRepo) Exists(_ context.Context, email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func newAuthService(repo *fakeUserRepo) *Service {
	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, jwtService, DefaultServiceConfig())
}

func registerUser(t *testing.T, svc *Service, email, password string) *User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterRequest{
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	ctx := context.Background()

	user := registerUser(t, svc, "alice@example.com", "correct-horse")
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "correct-horse", user.PasswordHash, "password must be hashed")

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "alice@example.com", Password: "another-pass"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeConflict, appErr.Code)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Email: "bob@example.com", Password: "short"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})

	t.Run("missing email", func(t *testing.T) {
		_, err := svc.Register(ctx, RegisterRequest{Password: "long-enough-pass"})
		require.Error(t, err)
	})
}

func TestLoginSuccess(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	user := registerUser(t, svc, "alice@example.com", "correct-horse")

	pair, loggedIn, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.NotEmpty(t, pair.AccessToken)
	assert.True(t, pair.ExpiresAt.After(time.Now()))
	assert.NotNil(t, loggedIn.LastLoginAt)
}

func TestLoginIssuesValidatableToken(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	user := registerUser(t, svc, "alice@example.com", "correct-horse")

	pair, _, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)

	jwtService := NewJWTService(DefaultJWTConfig("test-secret"))
	uc, err := jwtService.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, "alice@example.com", uc.Email)

	// A token signed with another secret is rejected.
	otherService := NewJWTService(DefaultJWTConfig("other-secret"))
	_, err = otherService.ValidateToken(pair.AccessToken)
	require.Error(t, err)
}

func TestLoginFailures(t *testing.T) {
	svc := newAuthService(newFakeUserRepo())
	registerUser(t, svc, "alice@example.com", "correct-horse")
	ctx := context.Background()

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "wrong"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
		assert.True(t, strings.Contains(appErr.Message, "invalid credentials"))
	})

	t.Run("unknown email same message", func(t *testing.T) {
		_, _, err := svc.Login(ctx, Credentials{Email: "nobody@example.com", Password: "whatever"})
		require.Error(t, err)
		appErr, ok := apperror.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
		assert.True(t, strings.Contains(appErr.Message, "invalid credentials"))
	})

	t.Run("empty credentials", func(t *testing.T) {
		_, _, err := svc.Login(ctx, Credentials{})
		require.Error(t, err)
		appErr, _ := apperror.AsAppError(err)
		assert.Equal(t, apperror.CodeValidation, appErr.Code)
	})
}

func TestLockoutAfterRepeatedFailures(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	registerUser(t, svc, "alice@example.com", "correct-horse")
	ctx := context.Background()

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "wrong"})
		require.Error(t, err)
	}

	// Even the correct password is refused while locked.
	_, _, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "correct-horse"})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	// The lock expires; a successful login resets the counter.
	user := repo.byEmail["alice@example.com"]
	past := time.Now().Add(-time.Minute)
	user.LockedUntil = &past

	_, loggedIn, err := svc.Login(ctx, Credentials{Email: "alice@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, 0, loggedIn.FailedLoginAttempts)
	assert.Nil(t, loggedIn.LockedUntil)
}

func TestDisabledAccountCannotLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newAuthService(repo)
	registerUser(t, svc, "alice@example.com", "correct-horse")
	repo.byEmail["alice@example.com"].IsActive = false

	_, _, err := svc.Login(context.Background(), Credentials{
		Email:    "alice@example.com",
		Password: "correct-horse",
	})
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestPermissionChecks(t *testing.T) {
	user := NewUser("ops@example.com", "hash")
	user.Roles = []string{"warehouse"}
	user.Permissions = []string{"order:fulfill"}

	assert.True(t, user.HasRole("warehouse"))
	assert.False(t, user.HasRole("admin"))
	assert.True(t, user.HasPermission("order:fulfill"))
	assert.False(t, user.HasPermission("promotion:admin"))

	admin := NewUser("admin@example.com", "hash")
	admin.IsAdmin = true
	assert.True(t, admin.HasPermission("promotion:admin"), "admin implies all permissions")
}
