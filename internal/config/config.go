package config

import (
	"net/http"
	"time"
)

// Config is the immutable application configuration. It is loaded once at
// startup via Load and injected into every component that needs it.
type Config interface {
	EnvConfig
	JWTConfig
	CookieConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetDatabaseURL() string
	GetSweepInterval() time.Duration
}

type JWTConfig interface {
	GetJWTKey() []byte
	GetJWTIssuer() string
	GetJWTAudience() string
	GetAccessTokenExpiry() time.Duration
	GetRefreshTokenExpiry() time.Duration
}

type CookieConfig interface {
	GetCookieSecure() bool
	GetCookieSameSite() http.SameSite
	GetCookieDomain() string
}

type SecurityConfig interface {
	GetBcryptCost() int
	GetMaxFailedLogins() int
	GetLockoutWindow() time.Duration
	GetResetTokenExpiry() time.Duration
	GetConfirmTokenExpiry() time.Duration
}
