package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/tunehub-api/shared/security"
)

// resetTokenBytes yields a 40 character hex token.
const resetTokenBytes = 20

// PasswordResetUsecase defines the business logic for password reset token operations.
type PasswordResetUsecase interface {
	// RequestPasswordReset issues a reset token for email and mails the reset link.
	// Unknown emails succeed silently.
	RequestPasswordReset(ctx context.Context, email string) error

	// ResetPassword consumes token and sets newPassword.
	ResetPassword(ctx context.Context, token, newPassword string) error

	// ValidatePasswordResetToken checks that token is live without consuming it.
	ValidatePasswordResetToken(ctx context.Context, token string) error
}

// ResetMailer delivers password reset links.
type ResetMailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string, expiresIn time.Duration) error
}

var (
	ErrInvalidResetToken = errors.New("invalid or expired token")
	ErrMailDelivery      = errors.New("password reset email delivery failed")
)

type passwordResetUsecase struct {
	userRepo    repository.UserRepository
	mailer      ResetMailer
	frontendURL string
	expiresIn   time.Duration
	logger      *zerolog.Logger
	now         func() time.Time
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	userRepo repository.UserRepository,
	mailer ResetMailer,
	frontendURL string,
	expiresIn time.Duration,
	logger *zerolog.Logger,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		userRepo:    userRepo,
		mailer:      mailer,
		frontendURL: frontendURL,
		expiresIn:   expiresIn,
		logger:      logger,
		now:         time.Now,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) error {
	email = model.NormalizeEmail(email)

	token, err := security.RandomHex(resetTokenBytes)
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}

	expiresAt := u.now().Add(u.expiresIn)

	// A single conditional write both checks the email and replaces any outstanding token.
	if err := u.userRepo.SetPasswordResetToken(ctx, email, token, expiresAt); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// To prevent email enumeration, do not reveal that the email does not exist.
			return nil
		}
		return fmt.Errorf("store reset token: %w", err)
	}

	// The stored token stays valid even if delivery fails below.
	if err := u.mailer.SendPasswordReset(ctx, email, u.resetURL(token), u.expiresIn); err != nil {
		return fmt.Errorf("%w: %v", ErrMailDelivery, err)
	}

	u.logger.Info().Time("expires_at", expiresAt).Msg("password reset token issued")
	return nil
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user, err := u.userRepo.ConsumePasswordResetToken(ctx, token, u.now(), passwordHash)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("consume reset token: %w", err)
	}

	u.logger.Info().Str("user_id", user.ID.Hex()).Msg("password reset completed")
	return nil
}

func (u *passwordResetUsecase) ValidatePasswordResetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidResetToken
	}

	if _, err := u.userRepo.GetUserByResetToken(ctx, token, u.now()); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("lookup reset token: %w", err)
	}

	return nil
}

// resetURL renders "{frontendURL}?reset_token={token}".
func (u *passwordResetUsecase) resetURL(token string) string {
	return u.frontendURL + "?reset_token=" + url.QueryEscape(token)
}
