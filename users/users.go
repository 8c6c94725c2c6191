package users

import (
	"strings"
	"time"
)

// RoleType represents a user's role within the system
type RoleType string

const (
	RoleAdmin   RoleType = "Admin"   // Full administrative access
	RoleManager RoleType = "Manager" // Can manage documents and users
	RoleUser    RoleType = "User"    // Regular user, default on registration
)

// User is the credential record: the source of truth for a user's identity,
// password hash, and the single currently-valid refresh token. Records are
// never physically deleted; deactivation flips the Active flag.
type User struct {
	ID           string   `json:"id,omitempty"`         // Unique identifier (UUID)
	Email        string   `json:"email,omitempty"`      // Stored lower-cased; unique
	PasswordHash string   `json:"-"`                    // Bcrypt hash - never serialize
	FirstName    string   `json:"first_name,omitempty"` // First name of the user
	LastName     string   `json:"last_name,omitempty"`  // Last name of the user
	Role         RoleType `json:"role,omitempty"`       // Admin, Manager or User

	Active         bool `json:"active,omitempty"`          // Deactivated users cannot log in
	EmailConfirmed bool `json:"email_confirmed,omitempty"` // Set after confirm-email

	// Current refresh token. Value and expiry are either both set or both nil;
	// issuing a new token implicitly invalidates the previous one.
	RefreshToken          *string    `json:"-"`
	RefreshTokenExpiresAt *time.Time `json:"-"`

	// Lockout accounting. FailedLogins resets on a successful login.
	FailedLogins   int        `json:"-"`
	LockedOutUntil *time.Time `json:"-"`

	// One-time tokens owned by the credential provider.
	PasswordResetToken          *string    `json:"-"`
	PasswordResetTokenExpiresAt *time.Time `json:"-"`
	EmailConfirmToken           *string    `json:"-"`
	EmailConfirmTokenExpiresAt  *time.Time `json:"-"`

	CreatedAt   time.Time  `json:"created_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// FullName returns the display name used in access-token claims.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// LockedOut reports whether the account is inside a lockout window.
func (u *User) LockedOut(now time.Time) bool {
	return u.LockedOutUntil != nil && now.Before(*u.LockedOutUntil)
}

// HasRefreshToken reports whether a refresh token pair is currently stored.
func (u *User) HasRefreshToken() bool {
	return u.RefreshToken != nil && u.RefreshTokenExpiresAt != nil
}

// NormalizeEmail lower-cases and trims an email for case-insensitive matching.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
