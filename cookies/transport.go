// Package cookies moves the access/refresh token pair between the server and
// the browser. Both cookies are HttpOnly; security attributes come from
// configuration.
package cookies

import (
	"net/http"
	"time"

	"github.com/docuflow/go-auth-service/internal/config"
)

const (
	// AccessTokenCookie carries the signed JWT access token.
	AccessTokenCookie = "AccessToken"
	// RefreshTokenCookie carries the opaque refresh token.
	RefreshTokenCookie = "RefreshToken"
	// SessionIDCookie carries the server-side session id set at login.
	SessionIDCookie = "SessionId"
)

const (
	accessTokenLifetime   = time.Hour
	refreshTokenLifetime  = 7 * 24 * time.Hour
	rememberMeLifetime    = 30 * 24 * time.Hour
	sessionCookieLifetime = 7 * 24 * time.Hour
)

// Transport writes and reads the token cookies with the configured security
// attributes.
type Transport struct {
	secure   bool
	sameSite http.SameSite
	domain   string
	nowFunc  func() time.Time
}

type TransportOption func(*Transport)

// WithNowFunc sets the time source (primarily for testing)
func WithNowFunc(now func() time.Time) TransportOption {
	return func(t *Transport) {
		t.nowFunc = now
	}
}

func NewTransport(cfg config.CookieConfig, options ...TransportOption) *Transport {
	t := &Transport{
		secure:   cfg.GetCookieSecure(),
		sameSite: cfg.GetCookieSameSite(),
		domain:   cfg.GetCookieDomain(),
		nowFunc:  time.Now,
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

// Write sets both token cookies. With rememberMe both live 30 days; otherwise
// the access cookie lives 1 hour and the refresh cookie 7 days. The access
// cookie may outlive the token it carries; refresh recovers from that.
func (t *Transport) Write(w http.ResponseWriter, accessToken, refreshToken string, rememberMe bool) {
	accessExpiry := accessTokenLifetime
	refreshExpiry := refreshTokenLifetime
	if rememberMe {
		accessExpiry = rememberMeLifetime
		refreshExpiry = rememberMeLifetime
	}

	http.SetCookie(w, t.cookie(AccessTokenCookie, accessToken, accessExpiry))
	http.SetCookie(w, t.cookie(RefreshTokenCookie, refreshToken, refreshExpiry))
}

// Read returns whatever tokens are present; either or both may be empty.
func (t *Transport) Read(r *http.Request) (accessToken, refreshToken string) {
	if c, err := r.Cookie(AccessTokenCookie); err == nil {
		accessToken = c.Value
	}
	if c, err := r.Cookie(RefreshTokenCookie); err == nil {
		refreshToken = c.Value
	}
	return accessToken, refreshToken
}

// Clear deletes both token cookies immediately.
func (t *Transport) Clear(w http.ResponseWriter) {
	http.SetCookie(w, t.expired(AccessTokenCookie))
	http.SetCookie(w, t.expired(RefreshTokenCookie))
}

// WriteSessionID sets the server-side session id cookie.
func (t *Transport) WriteSessionID(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, t.cookie(SessionIDCookie, sessionID, sessionCookieLifetime))
}

// ReadSessionID returns the session id cookie value, or empty when absent.
func (t *Transport) ReadSessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionIDCookie); err == nil {
		return c.Value
	}
	return ""
}

// ClearSessionID deletes the session id cookie.
func (t *Transport) ClearSessionID(w http.ResponseWriter) {
	http.SetCookie(w, t.expired(SessionIDCookie))
}

func (t *Transport) cookie(name, value string, lifetime time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   t.domain,
		Expires:  t.nowFunc().Add(lifetime),
		MaxAge:   int(lifetime.Seconds()),
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: t.sameSite,
	}
}

func (t *Transport) expired(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   t.domain,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   t.secure,
		SameSite: t.sameSite,
	}
}

// Jar binds the transport to one request/response pair so the auth service
// receives its cookie collaborator explicitly rather than resolving it from
// ambient request state.
type Jar struct {
	transport *Transport
	w         http.ResponseWriter
	r         *http.Request
}

func (t *Transport) Jar(w http.ResponseWriter, r *http.Request) *Jar {
	return &Jar{transport: t, w: w, r: r}
}

func (j *Jar) Write(accessToken, refreshToken string, rememberMe bool) {
	j.transport.Write(j.w, accessToken, refreshToken, rememberMe)
}

func (j *Jar) Read() (accessToken, refreshToken string) {
	return j.transport.Read(j.r)
}

func (j *Jar) Clear() {
	j.transport.Clear(j.w)
}

func (j *Jar) WriteSessionID(sessionID string) {
	j.transport.WriteSessionID(j.w, sessionID)
}

func (j *Jar) ReadSessionID() string {
	return j.transport.ReadSessionID(j.r)
}

func (j *Jar) ClearSessionID() {
	j.transport.ClearSessionID(j.w)
}
