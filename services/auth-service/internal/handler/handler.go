package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/tunehub-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/tunehub-api/shared/validator"
)

const maxBodyBytes = 1 << 20

const (
	msgInvalidBody = "Invalid request body"
	msgInternal    = "An unexpected error occurred"
)

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// AuthHTTPHandler serves the signup, login and password reset endpoints.
type AuthHTTPHandler struct {
	authUsecase          usecase.AuthUsecase
	passwordResetUsecase usecase.PasswordResetUsecase
	validator            *validator.Validator
	health               HealthChecker
}

// NewAuthHTTPHandler creates the HTTP handlers of the auth service.
func NewAuthHTTPHandler(
	authUsecase usecase.AuthUsecase,
	passwordResetUsecase usecase.PasswordResetUsecase,
	validator *validator.Validator,
	health HealthChecker,
) *AuthHTTPHandler {
	return &AuthHTTPHandler{
		authUsecase:          authUsecase,
		passwordResetUsecase: passwordResetUsecase,
		validator:            validator,
		health:               health,
	}
}

func (h *AuthHTTPHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.Ping(r.Context()); err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("store health check failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeJSON reads a single JSON object into dst, rejecting unknown fields.
// An empty body decodes to the zero value so that field validation reports it.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}

	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payload.ErrorResponse{Error: message})
}

func (h *AuthHTTPHandler) writeValidationError(w http.ResponseWriter, message string, err error) {
	writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{
		Error:   message,
		Details: h.validator.Translate(err),
	})
}

// writeInternalError logs err and responds with the generic 500 body.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	hlog.FromRequest(r).Error().Err(err).Msg(msg)
	writeError(w, http.StatusInternalServerError, msgInternal)
}
