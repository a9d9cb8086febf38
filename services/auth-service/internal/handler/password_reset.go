package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/usecase"
)

const (
	msgForgotPassword      = "If an account with that email exists, a password reset link has been sent."
	msgEmailRequired       = "Email is required"
	msgPasswordReset       = "Password has been reset"
	msgResetFieldsRequired = "Token and new password are required"
	msgInvalidResetToken   = "Invalid or expired token"
)

func (h *AuthHTTPHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	req.Email = strings.TrimSpace(req.Email)

	if err := h.validator.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, msgEmailRequired)
		return
	}

	if err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email); err != nil {
		writeInternalError(w, r, err, "failed to request password reset")
		return
	}

	writeJSON(w, http.StatusOK, payload.MessageResponse{Message: msgForgotPassword})
}

func (h *AuthHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	req.Token = strings.TrimSpace(req.Token)

	if err := h.validator.Struct(req); err != nil {
		h.writeValidationError(w, msgResetFieldsRequired, err)
		return
	}

	if err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidResetToken):
			writeError(w, http.StatusBadRequest, msgInvalidResetToken)
		default:
			writeInternalError(w, r, err, "failed to reset password")
		}
		return
	}

	writeJSON(w, http.StatusOK, payload.MessageResponse{Message: msgPasswordReset})
}

func (h *AuthHTTPHandler) ValidatePasswordResetToken(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimSpace(r.URL.Query().Get("token"))

	if err := h.passwordResetUsecase.ValidatePasswordResetToken(r.Context(), token); err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidResetToken):
			writeError(w, http.StatusBadRequest, msgInvalidResetToken)
		default:
			writeInternalError(w, r, err, "failed to validate password reset token")
		}
		return
	}

	writeJSON(w, http.StatusOK, payload.ValidateResetTokenResponse{Valid: true})
}
