package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/tunehub-api/shared/auth"
)

const testFrontendURL = "http://localhost:3000/"

var testTokenCfg = config.TokenConfig{
	Issuer:                   "tunehub-test",
	SessionSecret:            "0123456789abcdef0123456789abcdef",
	SessionExpiresIn:         24 * time.Hour,
	SessionExtendedExpiresIn: 30 * 24 * time.Hour,
	PasswordResetExpiresIn:   time.Hour,
}

type sentReset struct {
	to        string
	resetURL  string
	expiresIn time.Duration
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentReset
	err  error
}

func (f *fakeMailer) SendPasswordReset(_ context.Context, to, resetURL string, expiresIn time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentReset{to: to, resetURL: resetURL, expiresIn: expiresIn})
	return nil
}

func (f *fakeMailer) calls() []sentReset {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]sentReset(nil), f.sent...)
}

// failingRepo forces infrastructure errors from an otherwise working repository.
type failingRepo struct {
	repository.UserRepository
	err error
}

func (f failingRepo) GetUserByEmail(context.Context, string) (*model.User, error) {
	return nil, f.err
}

func (f failingRepo) SetPasswordResetToken(context.Context, string, string, time.Time) error {
	return f.err
}

var errDatabaseDown = errors.New("database down")

type fixture struct {
	repo         repository.UserRepository
	mailer       *fakeMailer
	jwt          *auth.JWTAuthenticator
	authUsecase  AuthUsecase
	resetUsecase *passwordResetUsecase
}

func newFixture() *fixture {
	repo := repository.NewUserMemoryRepository()
	mailer := &fakeMailer{}
	jwtAuth := auth.NewJWTAuthenticator(testTokenCfg.SessionSecret, testTokenCfg.Issuer, testTokenCfg.Issuer)
	logger := zerolog.Nop()

	return &fixture{
		repo:        repo,
		mailer:      mailer,
		jwt:         jwtAuth,
		authUsecase: NewAuthUsecase(repo, jwtAuth, testTokenCfg),
		resetUsecase: NewPasswordResetUsecase(
			repo, mailer, testFrontendURL, testTokenCfg.PasswordResetExpiresIn, &logger,
		).(*passwordResetUsecase),
	}
}
