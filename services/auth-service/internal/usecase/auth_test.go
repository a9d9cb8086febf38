package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/tunehub-api/shared/security"
)

func TestSignup_CreatesUserAndSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.authUsecase.Signup(ctx, SignupParams{
		Name:     "Test User",
		Email:    "  Test@Example.com ",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "test@example.com", session.User.Email)
	assert.Equal(t, "Test User", session.User.Name)
	assert.Equal(t, model.RoleUser, session.User.Role)
	assert.Equal(t, 24*time.Hour, session.ExpiresIn)
	assert.NotEqual(t, "password123", session.User.PasswordHash)

	stored, err := f.repo.GetUserByEmail(ctx, "test@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)

	ok, err := security.VerifyPassword("password123", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	claims, err := f.jwt.ParseSessionToken(session.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID.Hex(), claims.UserID)
	assert.Equal(t, "user", claims.Role)
}

func TestSignup_DuplicateEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	first, err := f.authUsecase.Signup(ctx, SignupParams{Name: "A", Email: "dup@example.com", Password: "one"})
	require.NoError(t, err)

	_, err = f.authUsecase.Signup(ctx, SignupParams{Name: "B", Email: "DUP@example.com", Password: "two"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)

	stored, err := f.repo.GetUserByEmail(ctx, "dup@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, stored.ID)
	assert.Equal(t, "A", stored.Name)

	ok, err := security.VerifyPassword("one", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok, "duplicate signup must not mutate the existing user")
}

func TestSignup_StoreFailure(t *testing.T) {
	f := newFixture()
	u := NewAuthUsecase(failingRepo{UserRepository: f.repo, err: errDatabaseDown}, f.jwt, testTokenCfg)

	_, err := u.Signup(context.Background(), SignupParams{Name: "A", Email: "a@example.com", Password: "p"})
	assert.ErrorIs(t, err, errDatabaseDown)
}

func TestLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.authUsecase.Signup(ctx, SignupParams{Name: "A", Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	t.Run("default lifetime", func(t *testing.T) {
		session, err := f.authUsecase.Login(ctx, LoginParams{Email: "a@example.com", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, 24*time.Hour, session.ExpiresIn)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), session.ExpiresAt, 5*time.Second)

		claims, err := f.jwt.ParseSessionToken(session.Token)
		require.NoError(t, err)
		assert.WithinDuration(t, session.ExpiresAt, claims.ExpiresAt.Time, time.Second)
	})

	t.Run("stay logged in", func(t *testing.T) {
		session, err := f.authUsecase.Login(ctx, LoginParams{Email: "A@EXAMPLE.COM", Password: "secret", StayLoggedIn: true})
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, session.ExpiresIn)
		assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), session.ExpiresAt, 5*time.Second)
	})
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.authUsecase.Signup(ctx, SignupParams{Name: "A", Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	_, wrongPassword := f.authUsecase.Login(ctx, LoginParams{Email: "a@example.com", Password: "nope"})
	_, unknownEmail := f.authUsecase.Login(ctx, LoginParams{Email: "ghost@example.com", Password: "secret"})

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLogin_UnknownEmailStillVerifiesPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.authUsecase.Signup(ctx, SignupParams{Name: "A", Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	var hashes []string
	u := f.authUsecase.(*authUsecase)
	u.verifyPassword = func(password, encodedHash string) (bool, error) {
		hashes = append(hashes, encodedHash)
		return security.VerifyPassword(password, encodedHash)
	}

	_, err = u.Login(ctx, LoginParams{Email: "ghost@example.com", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 1)
	assert.Equal(t, dummyPasswordHash(), hashes[0])

	_, err = u.Login(ctx, LoginParams{Email: "a@example.com", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 2)
	assert.NotEqual(t, dummyPasswordHash(), hashes[1])
}

func TestDummyPasswordHash_IsValidArgon2(t *testing.T) {
	ok, err := security.VerifyPassword("tunehub-dummy-password", dummyPasswordHash())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, dummyPasswordHash(), dummyPasswordHash())
}

func TestLogin_StoreFailure(t *testing.T) {
	f := newFixture()
	u := NewAuthUsecase(failingRepo{UserRepository: f.repo, err: errDatabaseDown}, f.jwt, testTokenCfg)

	_, err := u.Login(context.Background(), LoginParams{Email: "a@example.com", Password: "p"})
	assert.ErrorIs(t, err, errDatabaseDown)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetCurrentUser(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	session, err := f.authUsecase.Signup(ctx, SignupParams{Name: "A", Email: "a@example.com", Password: "secret"})
	require.NoError(t, err)

	user, err := f.authUsecase.GetCurrentUser(ctx, session.User.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", user.Email)

	_, err = f.authUsecase.GetCurrentUser(ctx, "000000000000000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
