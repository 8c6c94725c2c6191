// Package credentials owns everything about the password side of a credential
// record: hashing, strength policy, lockout accounting, and the one-time
// tokens for password reset and email confirmation. The auth service treats it
// as an external identity provider and persists the records it mutates.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/docuflow/go-auth-service/internal/config"
	apperrors "github.com/docuflow/go-auth-service/internal/errors"
	"github.com/docuflow/go-auth-service/internal/utils"
	"github.com/docuflow/go-auth-service/users"
)

var (
	ErrPasswordMismatch    = errors.New("password does not match")
	ErrLockedOut           = errors.New("account is locked out")
	ErrInvalidResetToken   = errors.New("invalid or expired reset token")
	ErrInvalidConfirmToken = errors.New("invalid or expired confirmation token")
	ErrAlreadyConfirmed    = errors.New("email already confirmed")
)

const oneTimeTokenLength = 32

// Provider applies the credential policy. All methods mutate the passed user
// record in place; the caller persists it.
type Provider struct {
	cost          int
	maxFailed     int
	lockoutWindow time.Duration
	resetExpiry   time.Duration
	confirmExpiry time.Duration
	nowFunc       func() time.Time
}

type ProviderOption func(*Provider)

// WithNowFunc sets the time source (primarily for testing)
func WithNowFunc(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.nowFunc = now
	}
}

func NewProvider(cfg config.SecurityConfig, options ...ProviderOption) *Provider {
	p := &Provider{
		cost:          cfg.GetBcryptCost(),
		maxFailed:     cfg.GetMaxFailedLogins(),
		lockoutWindow: cfg.GetLockoutWindow(),
		resetExpiry:   cfg.GetResetTokenExpiry(),
		confirmExpiry: cfg.GetConfirmTokenExpiry(),
		nowFunc:       time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

// HashPassword validates the strength policy and returns a bcrypt hash.
func (p *Provider) HashPassword(password string) (string, error) {
	if err := ValidatePasswordStrength(password); err != nil {
		return "", err
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return "", errors.Wrap(err, "[Provider.HashPassword] bcrypt")
	}
	return string(bytes), nil
}

// CheckLogin verifies password against user's hash, applying the lockout
// policy: after maxFailed consecutive failures the account locks for the
// configured window. The mutated counters must be persisted by the caller on
// both the success and failure paths.
func (p *Provider) CheckLogin(user *users.User, password string) error {
	now := p.nowFunc()
	if user.LockedOut(now) {
		return ErrLockedOut
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		user.FailedLogins++
		if user.FailedLogins >= p.maxFailed {
			user.LockedOutUntil = utils.Ptr(now.Add(p.lockoutWindow))
			user.FailedLogins = 0
		}
		return ErrPasswordMismatch
	}

	user.FailedLogins = 0
	user.LockedOutUntil = nil
	return nil
}

// ChangePassword verifies the current password and replaces the hash.
func (p *Provider) ChangePassword(user *users.User, currentPassword, newPassword string) error {
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return ErrPasswordMismatch
	}
	hash, err := p.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	return nil
}

// IssueResetToken generates and stores a single-use password-reset token.
func (p *Provider) IssueResetToken(user *users.User) (string, error) {
	tokenValue, err := newOneTimeToken()
	if err != nil {
		return "", errors.Wrap(err, "[Provider.IssueResetToken]")
	}
	user.PasswordResetToken = utils.Ptr(tokenValue)
	user.PasswordResetTokenExpiresAt = utils.Ptr(p.nowFunc().Add(p.resetExpiry))
	return tokenValue, nil
}

// ResetPassword consumes a reset token and sets the new password hash.
func (p *Provider) ResetPassword(user *users.User, tokenValue, newPassword string) error {
	if !p.tokenValid(user.PasswordResetToken, user.PasswordResetTokenExpiresAt, tokenValue) {
		return ErrInvalidResetToken
	}
	hash, err := p.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.PasswordResetToken = nil
	user.PasswordResetTokenExpiresAt = nil
	return nil
}

// IssueConfirmToken generates and stores a single-use email-confirmation token.
func (p *Provider) IssueConfirmToken(user *users.User) (string, error) {
	if user.EmailConfirmed {
		return "", ErrAlreadyConfirmed
	}
	tokenValue, err := newOneTimeToken()
	if err != nil {
		return "", errors.Wrap(err, "[Provider.IssueConfirmToken]")
	}
	user.EmailConfirmToken = utils.Ptr(tokenValue)
	user.EmailConfirmTokenExpiresAt = utils.Ptr(p.nowFunc().Add(p.confirmExpiry))
	return tokenValue, nil
}

// ConfirmEmail consumes a confirmation token and marks the email confirmed.
func (p *Provider) ConfirmEmail(user *users.User, tokenValue string) error {
	if user.EmailConfirmed {
		return ErrAlreadyConfirmed
	}
	if !p.tokenValid(user.EmailConfirmToken, user.EmailConfirmTokenExpiresAt, tokenValue) {
		return ErrInvalidConfirmToken
	}
	user.EmailConfirmed = true
	user.EmailConfirmToken = nil
	user.EmailConfirmTokenExpiresAt = nil
	return nil
}

func (p *Provider) tokenValid(stored *string, expiry *time.Time, supplied string) bool {
	if stored == nil || expiry == nil || supplied == "" {
		return false
	}
	if p.nowFunc().After(*expiry) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(*stored), []byte(supplied)) == 1
}

func newOneTimeToken() (string, error) {
	b := make([]byte, oneTimeTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	var subErrors []string

	if len(password) < 8 {
		subErrors = append(subErrors, "password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		subErrors = append(subErrors, "password must contain at least one uppercase letter")
	}
	if !hasLower {
		subErrors = append(subErrors, "password must contain at least one lowercase letter")
	}
	if !hasNumber {
		subErrors = append(subErrors, "password must contain at least one number")
	}

	if len(subErrors) > 0 {
		return apperrors.NewValidation("password does not meet requirements", subErrors...)
	}
	return nil
}
