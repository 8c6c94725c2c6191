package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/docuflow/go-auth-service/token"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyPrincipal stores the authenticated identity for the request
const ContextKeyPrincipal ContextKey = "principal"

// skipAuthPaths are served without any authentication attempt.
var skipAuthPaths = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/refresh",
	"/api/auth/forgot-password",
	"/api/auth/reset-password",
	"/api/auth/confirm-email",
	"/api/auth/resend-confirmation",
	"/api/health",
}

// Reauthenticate attempts silent authentication from cookies on every
// request. A valid access token attaches the identity; an expired one gets
// exactly one silent refresh; anything else clears the cookies. The request
// always proceeds - authorization is a downstream concern.
func (s *Server) Reauthenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipAuth(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		accessToken, _ := s.transport.Read(r)
		if accessToken == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal, err := s.codec.ValidateAccessToken(accessToken)
		switch {
		case err == nil:
			r = requestWithPrincipal(r, principal)
		case errors.Is(err, token.ErrTokenExpired):
			r = s.tryRefresh(w, r)
		default:
			s.transport.Clear(w)
		}

		next.ServeHTTP(w, r)
	})
}

// tryRefresh performs the single silent refresh attempt for an expired access
// token. On success the new token is validated and the identity attached; on
// failure the cookies are cleared and the request stays unauthenticated.
func (s *Server) tryRefresh(w http.ResponseWriter, r *http.Request) *http.Request {
	jar := s.transport.Jar(w, r)
	accessToken, refreshToken := jar.Read()
	if refreshToken == "" {
		jar.Clear()
		return r
	}

	resp, err := s.auth.Refresh(r.Context(), jar, accessToken, refreshToken, remoteIP(r), r.UserAgent())
	if err != nil {
		// Refresh already cleared the cookies for a spent token; clear for
		// every other failure too.
		s.transport.Clear(w)
		return r
	}

	principal, err := s.codec.ValidateAccessToken(resp.AccessToken)
	if err != nil {
		s.transport.Clear(w)
		return r
	}
	return requestWithPrincipal(r, principal)
}

func shouldSkipAuth(path string) bool {
	path = strings.ToLower(path)
	for _, skip := range skipAuthPaths {
		if strings.HasPrefix(path, skip) {
			return true
		}
	}
	return false
}

func requestWithPrincipal(r *http.Request, principal *token.Principal) *http.Request {
	ctx := context.WithValue(r.Context(), ContextKeyPrincipal, principal)
	return r.WithContext(ctx)
}

// PrincipalFromContext returns the authenticated identity attached by the
// middleware, or nil for an unauthenticated request.
func PrincipalFromContext(ctx context.Context) *token.Principal {
	principal, _ := ctx.Value(ContextKeyPrincipal).(*token.Principal)
	return principal
}
