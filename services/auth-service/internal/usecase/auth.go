package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/config"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/tunehub-api/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	Signup(ctx context.Context, params SignupParams) (*Session, error)
	Login(ctx context.Context, params LoginParams) (*Session, error)
	GetCurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// SignupParams defines the parameters for user registration.
type SignupParams struct {
	Name     string
	Email    string
	Password string
}

// LoginParams defines the parameters for user login.
type LoginParams struct {
	Email        string
	Password     string
	StayLoggedIn bool
}

// Session is the outcome of a successful signup or login.
type Session struct {
	User      *model.User
	Token     string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// SessionIssuer signs session bearer tokens.
type SessionIssuer interface {
	IssueSessionToken(userID, role string, expiresIn time.Duration) (string, time.Time, error)
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
)

// dummyPasswordHash is verified against when the email is unknown so that
// login costs one argon2 verify whether or not the account exists.
var dummyPasswordHash = sync.OnceValue(func() string {
	hash, err := security.HashPassword("tunehub-dummy-password")
	if err != nil {
		panic(fmt.Sprintf("hash dummy password: %v", err))
	}
	return hash
})

type authUsecase struct {
	userRepo       repository.UserRepository
	issuer         SessionIssuer
	tokenCfg       config.TokenConfig
	verifyPassword func(password, encodedHash string) (bool, error)
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	issuer SessionIssuer,
	tokenCfg config.TokenConfig,
) AuthUsecase {
	return &authUsecase{
		userRepo:       userRepo,
		issuer:         issuer,
		tokenCfg:       tokenCfg,
		verifyPassword: security.VerifyPassword,
	}
}

func (u *authUsecase) Signup(ctx context.Context, params SignupParams) (*Session, error) {
	email := model.NormalizeEmail(params.Email)

	if _, err := u.userRepo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := u.userRepo.CreateUser(ctx, &model.User{
		Name:         params.Name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
	})
	if err != nil {
		// A concurrent signup may win the unique index after the lookup above.
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return u.createSession(user, u.tokenCfg.SessionExpiresIn)
}

func (u *authUsecase) Login(ctx context.Context, params LoginParams) (*Session, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, model.NormalizeEmail(params.Email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			_, _ = u.verifyPassword(params.Password, dummyPasswordHash())
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user by email: %w", err)
	}

	if ok, err := u.verifyPassword(params.Password, user.PasswordHash); err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	} else if !ok {
		return nil, ErrInvalidCredentials
	}

	expiresIn := u.tokenCfg.SessionExpiresIn
	if params.StayLoggedIn {
		expiresIn = u.tokenCfg.SessionExtendedExpiresIn
	}

	return u.createSession(user, expiresIn)
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := u.userRepo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) createSession(user *model.User, expiresIn time.Duration) (*Session, error) {
	token, expiresAt, err := u.issuer.IssueSessionToken(user.ID.Hex(), string(user.Role), expiresIn)
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &Session{
		User:      user,
		Token:     token,
		ExpiresIn: expiresIn,
		ExpiresAt: expiresAt,
	}, nil
}
