package users

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrDuplicateEmail is returned by Create when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrRefreshTokenConflict is returned by RotateRefreshToken when the stored
	// token no longer matches the expected previous value.
	ErrRefreshTokenConflict = errors.New("stored refresh token changed")
)

// Repo is the persistence contract for credential records. Lookups return
// (nil, nil) when no record exists; errors are reserved for storage failures.
type Repo interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)

	// RotateRefreshToken swaps the stored refresh token for userID from
	// previous to next atomically. It fails with ErrRefreshTokenConflict if a
	// concurrent transition replaced the token first.
	RotateRefreshToken(ctx context.Context, userID, previous, next string, expiresAt time.Time) error
}
