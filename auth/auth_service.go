// Package auth is the orchestrator for the credential lifecycle: register,
// login, refresh, logout, and the password/email account flows. Each method is
// one business transaction over the credential record and, where relevant, the
// session store.
package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/docuflow/go-auth-service/cookies"
	"github.com/docuflow/go-auth-service/credentials"
	"github.com/docuflow/go-auth-service/email"
	"github.com/docuflow/go-auth-service/internal/config"
	apperrors "github.com/docuflow/go-auth-service/internal/errors"
	"github.com/docuflow/go-auth-service/internal/utils"
	"github.com/docuflow/go-auth-service/sessions"
	"github.com/docuflow/go-auth-service/token"
	"github.com/docuflow/go-auth-service/users"
)

// Repos holds the repository dependencies for the Service.
type Repos struct {
	Users    users.Repo
	Sessions sessions.Store
}

// Service ties the token codec, cookie transport, credential provider, and
// stores together. Methods that touch cookies take an explicit request-bound
// jar.
type Service struct {
	repos              Repos
	codec              *token.Codec
	credentials        *credentials.Provider
	mailer             email.Mailer
	logger             zerolog.Logger
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
	nowFunc            func() time.Time
}

type ServiceOption func(*Service)

// WithNowFunc sets the now time function (primarily for testing)
func WithNowFunc(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.nowFunc = now
	}
}

// NewService initializes the auth service with required dependencies.
func NewService(
	repos Repos,
	codec *token.Codec,
	provider *credentials.Provider,
	mailer email.Mailer,
	cfg config.JWTConfig,
	logger zerolog.Logger,
	options ...ServiceOption,
) (*Service, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewService] Users repo is required")
	}
	if repos.Sessions == nil {
		return nil, errors.New("[NewService] Sessions store is required")
	}
	if codec == nil {
		return nil, errors.New("[NewService] token codec is required")
	}
	if provider == nil {
		return nil, errors.New("[NewService] credentials provider is required")
	}
	if mailer == nil {
		return nil, errors.New("[NewService] mailer is required")
	}

	s := &Service{
		repos:              repos,
		codec:              codec,
		credentials:        provider,
		mailer:             mailer,
		logger:             logger,
		accessTokenExpiry:  cfg.GetAccessTokenExpiry(),
		refreshTokenExpiry: cfg.GetRefreshTokenExpiry(),
		nowFunc:            time.Now,
	}

	for _, opt := range options {
		opt(s)
	}

	return s, nil
}

// Register creates a credential record with the default role and logs the new
// user straight in: tokens are minted, the refresh token is stored, and both
// cookies are written.
func (s *Service) Register(ctx context.Context, jar *cookies.Jar, req RegisterRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.NewValidation("registration failed", "email and password are required")
	}

	existing, err := s.repos.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.unexpected("register", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := s.credentials.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := s.nowFunc()
	user := &users.User{
		ID:           uuid.New().String(),
		Email:        users.NormalizeEmail(req.Email),
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         users.RoleUser,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	confirmToken, err := s.credentials.IssueConfirmToken(user)
	if err != nil {
		return nil, s.unexpected("register", err)
	}

	accessToken, refreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return nil, s.unexpected("register", err)
	}

	if err := s.repos.Users.Create(ctx, user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, s.unexpected("register", err)
	}

	if err := s.mailer.SendEmailConfirmation(ctx, user.Email, confirmToken); err != nil {
		// Delivery is external; a failed send does not fail the registration.
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("confirmation email not sent")
	}

	jar.Write(accessToken, refreshToken, false)

	return s.authResponse(user, accessToken, refreshToken), nil
}

// Login authenticates the credentials, rotates the refresh token, records a
// session for the device, and writes the cookies. Unknown emails fail exactly
// like wrong passwords.
func (s *Service) Login(ctx context.Context, jar *cookies.Jar, req LoginRequest, ipAddress, userAgent string) (*AuthResponse, error) {
	user, err := s.repos.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, s.unexpected("login", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrAccountDeactivated
	}

	if err := s.credentials.CheckLogin(user, req.Password); err != nil {
		// Lockout counters changed even on failure; persist them.
		user.UpdatedAt = s.nowFunc()
		if updateErr := s.repos.Users.Update(ctx, user); updateErr != nil {
			return nil, s.unexpected("login", updateErr)
		}
		if errors.Is(err, credentials.ErrLockedOut) {
			return nil, ErrAccountLocked
		}
		return nil, ErrInvalidCredentials
	}

	accessToken, refreshToken, err := s.issueTokenPair(user)
	if err != nil {
		return nil, s.unexpected("login", err)
	}

	now := s.nowFunc()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, s.unexpected("login", err)
	}

	session, err := s.repos.Sessions.Create(ctx, user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, s.unexpected("login", err)
	}

	jar.Write(accessToken, refreshToken, req.RememberMe)
	jar.WriteSessionID(session.ID)

	s.logger.Info().Str("user_id", user.ID).Str("session_id", session.ID).Str("ip", ipAddress).Msg("user logged in")

	return s.authResponse(user, accessToken, refreshToken), nil
}

// Refresh exchanges an expired-but-valid access token plus the matching stored
// refresh token for a freshly rotated pair. A matched-but-stale refresh state
// clears the cookies; a bad access token leaves them alone.
func (s *Service) Refresh(ctx context.Context, jar *cookies.Jar, accessToken, refreshToken, ipAddress, userAgent string) (*AuthResponse, error) {
	cookieAccess, cookieRefresh := jar.Read()
	if accessToken == "" {
		accessToken = cookieAccess
	}
	if refreshToken == "" {
		refreshToken = cookieRefresh
	}
	if accessToken == "" || refreshToken == "" {
		return nil, apperrors.NewValidation("token refresh failed", "access token and refresh token are required")
	}

	principal, err := s.codec.PrincipalFromExpiredToken(accessToken)
	if err != nil {
		return nil, ErrInvalidAccessToken
	}

	user, err := s.repos.Users.GetByEmail(ctx, principal.Email)
	if err != nil {
		return nil, s.unexpected("refresh", err)
	}
	if user == nil || !user.HasRefreshToken() ||
		*user.RefreshToken != refreshToken ||
		!user.RefreshTokenExpiresAt.After(s.nowFunc()) {
		jar.Clear()
		return nil, ErrInvalidRefreshToken
	}

	newAccessToken, err := s.codec.IssueAccessToken(user)
	if err != nil {
		return nil, s.unexpected("refresh", err)
	}
	newRefreshToken, err := s.codec.NewRefreshToken()
	if err != nil {
		return nil, s.unexpected("refresh", err)
	}

	expiresAt := s.nowFunc().Add(s.refreshTokenExpiry)
	err = s.repos.Users.RotateRefreshToken(ctx, user.ID, refreshToken, newRefreshToken, expiresAt)
	if err != nil {
		if errors.Is(err, users.ErrRefreshTokenConflict) {
			// A concurrent transition won the rotation; this token is spent.
			jar.Clear()
			return nil, ErrInvalidRefreshToken
		}
		return nil, s.unexpected("refresh", err)
	}
	user.RefreshToken = utils.Ptr(newRefreshToken)
	user.RefreshTokenExpiresAt = utils.Ptr(expiresAt)

	jar.Write(newAccessToken, newRefreshToken, false)

	s.logger.Debug().Str("user_id", user.ID).Str("ip", ipAddress).Str("user_agent", userAgent).Msg("tokens rotated")

	return s.authResponse(user, newAccessToken, newRefreshToken), nil
}

// Logout clears the cookies and, when a session id is supplied, deactivates
// that one session. Calling it twice is harmless.
func (s *Service) Logout(ctx context.Context, jar *cookies.Jar, sessionID string) error {
	jar.Clear()
	jar.ClearSessionID()

	if sessionID != "" {
		if err := s.repos.Sessions.Delete(ctx, sessionID); err != nil {
			return s.unexpected("logout", err)
		}
	}
	return nil
}

// LogoutAll deactivates every session the user owns, clears the stored
// refresh token pair, and clears the cookies. After this no device can
// silently re-authenticate.
func (s *Service) LogoutAll(ctx context.Context, jar *cookies.Jar, userID string) error {
	if err := s.repos.Sessions.DeleteAllForUser(ctx, userID); err != nil {
		return s.unexpected("logout_all", err)
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return s.unexpected("logout_all", err)
	}
	if user != nil {
		user.RefreshToken = nil
		user.RefreshTokenExpiresAt = nil
		user.UpdatedAt = s.nowFunc()
		if err := s.repos.Users.Update(ctx, user); err != nil {
			return s.unexpected("logout_all", err)
		}
	}

	jar.Clear()
	jar.ClearSessionID()

	s.logger.Info().Str("user_id", userID).Msg("all sessions revoked")
	return nil
}

// issueTokenPair mints a fresh access token and refresh token and binds the
// refresh token to the user record (not yet persisted).
func (s *Service) issueTokenPair(user *users.User) (accessToken, refreshToken string, err error) {
	accessToken, err = s.codec.IssueAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refreshToken, err = s.codec.NewRefreshToken()
	if err != nil {
		return "", "", err
	}
	user.RefreshToken = utils.Ptr(refreshToken)
	user.RefreshTokenExpiresAt = utils.Ptr(s.nowFunc().Add(s.refreshTokenExpiry))
	return accessToken, refreshToken, nil
}

// unexpected logs a storage or infrastructure failure with context and
// converts it to the generic failure callers are allowed to see.
func (s *Service) unexpected(operation string, err error) error {
	s.logger.Error().Err(err).Str("operation", operation).Msg("auth transition failed")
	return ErrInternal
}
