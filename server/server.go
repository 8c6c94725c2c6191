// Package server exposes the auth service over HTTP. Authentication is
// carried by cookies; the re-auth middleware silently refreshes expired
// access tokens before handlers run.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/docuflow/go-auth-service/auth"
	"github.com/docuflow/go-auth-service/cookies"
	"github.com/docuflow/go-auth-service/internal/config"
	"github.com/docuflow/go-auth-service/token"
)

// Server wires the router, the auth service, and the cookie transport.
type Server struct {
	router    chi.Router
	config    config.Config
	auth      *auth.Service
	codec     *token.Codec
	transport *cookies.Transport
	logger    zerolog.Logger
}

func New(cfg config.Config, authService *auth.Service, codec *token.Codec, transport *cookies.Transport, logger zerolog.Logger) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		auth:      authService,
		codec:     codec,
		transport: transport,
		logger:    logger,
	}
	s.initRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.router.Use(s.Reauthenticate)

	s.router.Get("/api/health", s.handleHealth)

	s.router.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/logout", s.handleLogout)
		r.Post("/logout-all", s.handleLogoutAll)
		r.Post("/change-password", s.handleChangePassword)
		r.Post("/forgot-password", s.handleForgotPassword)
		r.Post("/reset-password", s.handleResetPassword)
		r.Post("/confirm-email", s.handleConfirmEmail)
		r.Post("/resend-confirmation", s.handleResendConfirmation)
		r.Get("/me", s.handleCurrentUser)
		r.Put("/me", s.handleUpdateUser)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
