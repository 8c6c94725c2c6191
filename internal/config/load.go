package config

import (
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// mainConfig is the single concrete implementation of Config. Fields are set
// once in Load and never mutated afterwards.
type mainConfig struct {
	port               string
	appName            string
	env                string
	databaseURL        string
	sweepInterval      time.Duration
	jwtKey             []byte
	jwtIssuer          string
	jwtAudience        string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	cookieSecure       bool
	cookieSameSite     http.SameSite
	cookieDomain       string
	bcryptCost         int
	maxFailedLogins    int
	lockoutWindow      time.Duration
	resetTokenExpiry   time.Duration
	confirmTokenExpiry time.Duration
}

var _ Config = mainConfig{}

// Load reads .env (if present) and the environment via Viper and builds the
// immutable configuration. A missing JWT key is a startup error.
func Load() (Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine, env vars still apply

	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_NAME", "Docuflow Auth")
	v.SetDefault("ENV", "DEV")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SWEEP_INTERVAL", "1h")
	v.SetDefault("JWT_ISSUER", "docuflow-auth")
	v.SetDefault("JWT_AUDIENCE", "docuflow-api")
	v.SetDefault("ACCESS_TOKEN_EXPIRY", "1h")
	v.SetDefault("REFRESH_TOKEN_EXPIRY", "168h") // 7 days
	v.SetDefault("COOKIE_SECURE", true)
	v.SetDefault("COOKIE_SAMESITE", "strict")
	v.SetDefault("COOKIE_DOMAIN", "")
	v.SetDefault("BCRYPT_COST", 12)
	v.SetDefault("MAX_FAILED_LOGINS", 5)
	v.SetDefault("LOCKOUT_WINDOW", "5m")
	v.SetDefault("RESET_TOKEN_EXPIRY", "24h")
	v.SetDefault("CONFIRM_TOKEN_EXPIRY", "72h")

	key := v.GetString("JWT_KEY")
	if key == "" {
		return nil, errors.New("[config.Load] JWT_KEY must be set")
	}

	cost := v.GetInt("BCRYPT_COST")
	if cost < 4 || cost > 31 {
		return nil, errors.New("[config.Load] BCRYPT_COST must be between 4 and 31")
	}

	port := v.GetString("PORT")
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	c := mainConfig{
		port:               port,
		appName:            v.GetString("APP_NAME"),
		env:                v.GetString("ENV"),
		databaseURL:        v.GetString("DATABASE_URL"),
		sweepInterval:      durationOr(v, "SWEEP_INTERVAL", time.Hour),
		jwtKey:             []byte(key),
		jwtIssuer:          v.GetString("JWT_ISSUER"),
		jwtAudience:        v.GetString("JWT_AUDIENCE"),
		accessTokenExpiry:  durationOr(v, "ACCESS_TOKEN_EXPIRY", time.Hour),
		refreshTokenExpiry: durationOr(v, "REFRESH_TOKEN_EXPIRY", 7*24*time.Hour),
		cookieSecure:       v.GetBool("COOKIE_SECURE"),
		cookieSameSite:     parseSameSite(v.GetString("COOKIE_SAMESITE")),
		cookieDomain:       v.GetString("COOKIE_DOMAIN"),
		bcryptCost:         cost,
		maxFailedLogins:    v.GetInt("MAX_FAILED_LOGINS"),
		lockoutWindow:      durationOr(v, "LOCKOUT_WINDOW", 5*time.Minute),
		resetTokenExpiry:   durationOr(v, "RESET_TOKEN_EXPIRY", 24*time.Hour),
		confirmTokenExpiry: durationOr(v, "CONFIRM_TOKEN_EXPIRY", 72*time.Hour),
	}

	return c, nil
}

func durationOr(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteStrictMode
	}
}

func (c mainConfig) GetPort() string                      { return c.port }
func (c mainConfig) GetAppName() string                   { return c.appName }
func (c mainConfig) GetEnv() string                       { return c.env }
func (c mainConfig) GetDatabaseURL() string               { return c.databaseURL }
func (c mainConfig) GetSweepInterval() time.Duration      { return c.sweepInterval }
func (c mainConfig) GetJWTKey() []byte                    { return c.jwtKey }
func (c mainConfig) GetJWTIssuer() string                 { return c.jwtIssuer }
func (c mainConfig) GetJWTAudience() string               { return c.jwtAudience }
func (c mainConfig) GetAccessTokenExpiry() time.Duration  { return c.accessTokenExpiry }
func (c mainConfig) GetRefreshTokenExpiry() time.Duration { return c.refreshTokenExpiry }
func (c mainConfig) GetCookieSecure() bool                { return c.cookieSecure }
func (c mainConfig) GetCookieSameSite() http.SameSite     { return c.cookieSameSite }
func (c mainConfig) GetCookieDomain() string              { return c.cookieDomain }
func (c mainConfig) GetBcryptCost() int                   { return c.bcryptCost }
func (c mainConfig) GetMaxFailedLogins() int              { return c.maxFailedLogins }
func (c mainConfig) GetLockoutWindow() time.Duration      { return c.lockoutWindow }
func (c mainConfig) GetResetTokenExpiry() time.Duration   { return c.resetTokenExpiry }
func (c mainConfig) GetConfirmTokenExpiry() time.Duration { return c.confirmTokenExpiry }
