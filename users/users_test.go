package users_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docuflow/go-auth-service/users"
)

func TestFullName(t *testing.T) {
	tests := []struct {
		name string
		user users.User
		want string
	}{
		{"both names", users.User{FirstName: "John", LastName: "Doe"}, "John Doe"},
		{"first only", users.User{FirstName: "John"}, "John"},
		{"last only", users.User{LastName: "Doe"}, "Doe"},
		{"empty", users.User{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.user.FullName())
		})
	}
}

func TestLockedOut(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	until := now.Add(5 * time.Minute)

	user := users.User{}
	require.False(t, user.LockedOut(now))

	user.LockedOutUntil = &until
	require.True(t, user.LockedOut(now))
	require.False(t, user.LockedOut(until), "lockout ends exactly at the boundary")
	require.False(t, user.LockedOut(until.Add(time.Second)))
}

func TestHasRefreshToken(t *testing.T) {
	token := "opaque-token"
	expiry := time.Now()

	user := users.User{}
	require.False(t, user.HasRefreshToken())

	user.RefreshToken = &token
	require.False(t, user.HasRefreshToken(), "both value and expiry must be set")

	user.RefreshTokenExpiresAt = &expiry
	require.True(t, user.HasRefreshToken())
}

func TestNormalizeEmail(t *testing.T) {
	require.Equal(t, "john.doe@example.com", users.NormalizeEmail("  John.Doe@Example.COM "))
}
