// Package sessions persists one server-side record per login: an audit/device
// trail independent of the token pair. Records are soft-invalidated, never
// physically deleted.
package sessions

import (
	"context"
	"time"
)

// DefaultLifetime is how long a new session stays valid.
const DefaultLifetime = 7 * 24 * time.Hour

// Session is one login on one device.
type Session struct {
	ID        string    // Unique session identifier (UUID), distinct from any token
	UserID    string    // Owning user (foreign reference, not ownership)
	IPAddress string    // Origin IP at login
	UserAgent string    // Browser/device user agent at login
	ExpiresAt time.Time // Advisory: only a sweep flips Active on expiry
	Active    bool      // Cleared on logout, logout-all, or sweep
	CreatedAt time.Time
}

// Expired reports whether the session's advisory expiry has passed.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the persistence contract for session records.
type Store interface {
	// Create stores a new active session expiring in DefaultLifetime.
	Create(ctx context.Context, userID, ipAddress, userAgent string) (*Session, error)

	// Get returns the active session with the given id, or nil when there is
	// none. A missing or inactive session is not an error.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Update persists mutated fields as-is; last writer wins.
	Update(ctx context.Context, session *Session) error

	// Delete soft-invalidates the session; a missing session is a no-op.
	Delete(ctx context.Context, sessionID string) error

	// DeleteAllForUser soft-invalidates every active session owned by userID.
	DeleteAllForUser(ctx context.Context, userID string) error

	// SweepExpired soft-invalidates every active session whose expiry has
	// passed and returns the number affected.
	SweepExpired(ctx context.Context) (int64, error)
}
