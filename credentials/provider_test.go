package credentials_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/go-auth-service/credentials"
	apperrors "github.com/docuflow/go-auth-service/internal/errors"
	"github.com/docuflow/go-auth-service/users"
)

const (
	testPassword    = "Password123"
	maxFailedLogins = 5
	lockoutWindow   = 5 * time.Minute
)

// testSecurityConfig satisfies config.SecurityConfig with fixed values
type testSecurityConfig struct{}

func (testSecurityConfig) GetBcryptCost() int                   { return 4 } // min cost, keeps tests fast
func (testSecurityConfig) GetMaxFailedLogins() int              { return maxFailedLogins }
func (testSecurityConfig) GetLockoutWindow() time.Duration      { return lockoutWindow }
func (testSecurityConfig) GetResetTokenExpiry() time.Duration   { return 24 * time.Hour }
func (testSecurityConfig) GetConfirmTokenExpiry() time.Duration { return 72 * time.Hour }

// clock is a controllable time source shared with the provider under test
type clock struct {
	now time.Time
}

func (c *clock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newProvider(t *testing.T) (*credentials.Provider, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	p := credentials.NewProvider(testSecurityConfig{}, credentials.WithNowFunc(func() time.Time { return c.now }))
	return p, c
}

func userWithPassword(t *testing.T, p *credentials.Provider) *users.User {
	t.Helper()
	hash, err := p.HashPassword(testPassword)
	require.NoError(t, err)
	return &users.User{ID: "user-1", Email: "john.doe@example.com", PasswordHash: hash, Active: true}
}

// TestHashPassword_RejectsWeakPasswords tests the strength policy
func TestHashPassword_RejectsWeakPasswords(t *testing.T) {
	p, _ := newProvider(t)

	tests := []struct {
		name     string
		password string
		wantSub  string
	}{
		{"too short", "Ab1", "at least 8 characters"},
		{"no uppercase", "password123", "uppercase"},
		{"no lowercase", "PASSWORD123", "lowercase"},
		{"no digit", "PasswordOnly", "number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.HashPassword(tt.password)
			require.Error(t, err)

			var validation *apperrors.ValidationError
			require.True(t, errors.As(err, &validation))
			require.NotEmpty(t, validation.Errors)

			found := false
			for _, sub := range validation.Errors {
				if strings.Contains(sub, tt.wantSub) {
					found = true
				}
			}
			require.True(t, found, "expected a sub-error mentioning %q, got %v", tt.wantSub, validation.Errors)
		})
	}
}

// TestCheckLogin_Success tests a correct password resets the failure counters
func TestCheckLogin_Success(t *testing.T) {
	p, _ := newProvider(t)
	user := userWithPassword(t, p)
	user.FailedLogins = 3

	err := p.CheckLogin(user, testPassword)
	require.NoError(t, err)
	require.Zero(t, user.FailedLogins)
	require.Nil(t, user.LockedOutUntil)
}

// TestCheckLogin_WrongPassword tests failure accounting
func TestCheckLogin_WrongPassword(t *testing.T) {
	p, _ := newProvider(t)
	user := userWithPassword(t, p)

	err := p.CheckLogin(user, "Wrong-password1")
	require.ErrorIs(t, err, credentials.ErrPasswordMismatch)
	require.Equal(t, 1, user.FailedLogins)
	require.Nil(t, user.LockedOutUntil)
}

// TestCheckLogin_LockoutAfterMaxFailures tests the lockout threshold
func TestCheckLogin_LockoutAfterMaxFailures(t *testing.T) {
	p, c := newProvider(t)
	user := userWithPassword(t, p)

	for i := 0; i < maxFailedLogins; i++ {
		err := p.CheckLogin(user, "Wrong-password1")
		require.ErrorIs(t, err, credentials.ErrPasswordMismatch)
	}

	require.NotNil(t, user.LockedOutUntil)
	require.Equal(t, c.now.Add(lockoutWindow), *user.LockedOutUntil)

	// Even the correct password is rejected during the lockout window.
	err := p.CheckLogin(user, testPassword)
	require.ErrorIs(t, err, credentials.ErrLockedOut)
}

// TestCheckLogin_LockoutExpires tests that the window ends
func TestCheckLogin_LockoutExpires(t *testing.T) {
	p, c := newProvider(t)
	user := userWithPassword(t, p)

	for i := 0; i < maxFailedLogins; i++ {
		_ = p.CheckLogin(user, "Wrong-password1")
	}
	require.ErrorIs(t, p.CheckLogin(user, testPassword), credentials.ErrLockedOut)

	c.advance(lockoutWindow + time.Second)

	err := p.CheckLogin(user, testPassword)
	require.NoError(t, err)
	require.Zero(t, user.FailedLogins)
	require.Nil(t, user.LockedOutUntil)
}

// TestChangePassword tests the current-password check
func TestChangePassword(t *testing.T) {
	p, _ := newProvider(t)
	user := userWithPassword(t, p)

	err := p.ChangePassword(user, "Wrong-password1", "NewPassword123")
	require.ErrorIs(t, err, credentials.ErrPasswordMismatch)

	err = p.ChangePassword(user, testPassword, "NewPassword123")
	require.NoError(t, err)
	require.NoError(t, p.CheckLogin(user, "NewPassword123"))
}

// TestResetToken_RoundTrip tests issue and consume of a reset token
func TestResetToken_RoundTrip(t *testing.T) {
	p, _ := newProvider(t)
	user := userWithPassword(t, p)

	tokenValue, err := p.IssueResetToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, tokenValue)
	require.NotNil(t, user.PasswordResetToken)

	err = p.ResetPassword(user, tokenValue, "NewPassword123")
	require.NoError(t, err)
	require.Nil(t, user.PasswordResetToken, "token is single use")
	require.NoError(t, p.CheckLogin(user, "NewPassword123"))

	// Replaying the consumed token fails.
	err = p.ResetPassword(user, tokenValue, "AnotherPassword1")
	require.ErrorIs(t, err, credentials.ErrInvalidResetToken)
}

// TestResetToken_Expired tests reset token expiry
func TestResetToken_Expired(t *testing.T) {
	p, c := newProvider(t)
	user := userWithPassword(t, p)

	tokenValue, err := p.IssueResetToken(user)
	require.NoError(t, err)

	c.advance(24*time.Hour + time.Second)

	err = p.ResetPassword(user, tokenValue, "NewPassword123")
	require.ErrorIs(t, err, credentials.ErrInvalidResetToken)
}

// TestResetToken_WrongValue tests that a mismatched token fails
func TestResetToken_WrongValue(t *testing.T) {
	p, _ := newProvider(t)
	user := userWithPassword(t, p)

	_, err := p.IssueResetToken(user)
	require.NoError(t, err)

	err = p.ResetPassword(user, "guessed-token", "NewPassword123")
	require.ErrorIs(t, err, credentials.ErrInvalidResetToken)
}

// TestConfirmEmail_RoundTrip tests issue and consume of a confirmation token
func TestConfirmEmail_RoundTrip(t *testing.T) {
	p, _ := newProvider(t)
	user := userWithPassword(t, p)

	tokenValue, err := p.IssueConfirmToken(user)
	require.NoError(t, err)

	err = p.ConfirmEmail(user, tokenValue)
	require.NoError(t, err)
	require.True(t, user.EmailConfirmed)
	require.Nil(t, user.EmailConfirmToken)

	// A confirmed account rejects further confirmation attempts.
	err = p.ConfirmEmail(user, tokenValue)
	require.ErrorIs(t, err, credentials.ErrAlreadyConfirmed)

	_, err = p.IssueConfirmToken(user)
	require.ErrorIs(t, err, credentials.ErrAlreadyConfirmed)
}

// TestConfirmEmail_Expired tests confirmation token expiry
func TestConfirmEmail_Expired(t *testing.T) {
	p, c := newProvider(t)
	user := userWithPassword(t, p)

	tokenValue, err := p.IssueConfirmToken(user)
	require.NoError(t, err)

	c.advance(72*time.Hour + time.Second)

	err = p.ConfirmEmail(user, tokenValue)
	require.ErrorIs(t, err, credentials.ErrInvalidConfirmToken)
	require.False(t, user.EmailConfirmed)
}
