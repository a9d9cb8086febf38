package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/tunehub-api/shared/middleware"
)

// RouterParams holds what NewRouter needs to mount the auth routes.
type RouterParams struct {
	Handler        *AuthHTTPHandler
	Sessions       middleware.SessionParser
	Logger         *zerolog.Logger
	RoutePrefix    string
	AllowedOrigins []string
}

// NewRouter creates the chi router of the auth service.
func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(p.Logger))
	r.Use(chimiddleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   p.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", p.Handler.Health)

	r.Route(p.RoutePrefix, func(r chi.Router) {
		r.Post("/signup", p.Handler.Signup)
		r.Post("/login", p.Handler.Login)
		r.Post("/forgot-password", p.Handler.ForgotPassword)
		r.Post("/reset-password", p.Handler.ResetPassword)
		r.Get("/reset-password/validate", p.Handler.ValidatePasswordResetToken)

		r.With(middleware.RequireSession(p.Sessions)).Get("/me", p.Handler.Me)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	return r
}
