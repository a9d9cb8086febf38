package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/tunehub-api/shared/middleware"
)

const (
	msgSignupSuccess      = "User created successfully"
	msgLoginSuccess       = "Login successful"
	msgAllFieldsRequired  = "All fields are required"
	msgUserAlreadyExists  = "User already exists"
	msgLoginFieldsMissing = "Email and password are required"
	msgInvalidCredentials = "Invalid email or password"
	msgUnauthorized       = "Unauthorized"
	msgUserNotFound       = "User not found"
)

func (h *AuthHTTPHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Struct(req); err != nil {
		h.writeValidationError(w, msgAllFieldsRequired, err)
		return
	}

	session, err := h.authUsecase.Signup(r.Context(), usecase.SignupParams{
		Name:     req.DisplayName(),
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserAlreadyExists):
			writeError(w, http.StatusBadRequest, msgUserAlreadyExists)
		default:
			writeInternalError(w, r, err, "failed to sign up user")
		}
		return
	}

	hlog.FromRequest(r).Info().Str("user_id", session.User.ID.Hex()).Msg("user signed up")

	writeJSON(w, http.StatusCreated, payload.SignupResponse{
		Message: msgSignupSuccess,
		User:    payload.NewUserProfile(session.User),
		Token:   session.Token,
	})
}

func (h *AuthHTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req payload.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Struct(req); err != nil {
		h.writeValidationError(w, msgLoginFieldsMissing, err)
		return
	}

	session, err := h.authUsecase.Login(r.Context(), usecase.LoginParams{
		Email:        req.Email,
		Password:     req.Password,
		StayLoggedIn: req.StayLoggedIn,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, msgInvalidCredentials)
		default:
			writeInternalError(w, r, err, "failed to log in user")
		}
		return
	}

	writeJSON(w, http.StatusOK, payload.LoginResponse{
		Message:   msgLoginSuccess,
		User:      payload.NewLoginProfile(session.User),
		Token:     session.Token,
		ExpiresIn: formatExpiresIn(session.ExpiresIn),
	})
}

func (h *AuthHTTPHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
		return
	}

	user, err := h.authUsecase.GetCurrentUser(r.Context(), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			writeError(w, http.StatusNotFound, msgUserNotFound)
		default:
			writeInternalError(w, r, err, "failed to load current user")
		}
		return
	}

	writeJSON(w, http.StatusOK, payload.CurrentUserResponse{User: payload.NewUserProfile(user)})
}

// formatExpiresIn renders whole-day lifetimes as "1d", "30d"; anything else
// falls back to Go duration syntax.
func formatExpiresIn(d time.Duration) string {
	const day = 24 * time.Hour
	if d > 0 && d%day == 0 {
		return fmt.Sprintf("%dd", d/day)
	}
	return d.String()
}
