package payload

import (
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/model"
)

// SignupRequest accepts either name or username for the display name.
type SignupRequest struct {
	Name     string `json:"name"     validate:"required_without=Username"`
	Username string `json:"username" validate:"required_without=Name"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// DisplayName prefers name over username.
func (r SignupRequest) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Username
}

type SignupResponse struct {
	Message string      `json:"message"`
	User    UserProfile `json:"user"`
	Token   string      `json:"token"`
}

type LoginRequest struct {
	Email        string `json:"email"        validate:"required,email"`
	Password     string `json:"password"     validate:"required"`
	StayLoggedIn bool   `json:"stayLoggedIn"`
}

type LoginResponse struct {
	Message   string       `json:"message"`
	User      LoginProfile `json:"user"`
	Token     string       `json:"token"`
	ExpiresIn string       `json:"expiresIn"`
}

// ForgotPasswordRequest only requires a non-empty email; malformed addresses
// get the same generic answer as unknown ones.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"       validate:"required"`
	NewPassword string `json:"newPassword" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ValidateResetTokenResponse struct {
	Valid bool `json:"valid"`
}

type CurrentUserResponse struct {
	User UserProfile `json:"user"`
}

type ErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details,omitempty"`
}

// UserProfile is the public view of a user.
type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// LoginProfile is the user view returned by login.
type LoginProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewUserProfile(u *model.User) UserProfile {
	return UserProfile{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

func NewLoginProfile(u *model.User) LoginProfile {
	return LoginProfile{
		ID:    u.ID.Hex(),
		Email: u.Email,
		Role:  string(u.Role),
	}
}
