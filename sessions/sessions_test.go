package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/docuflow/go-auth-service/sessions"
	"github.com/docuflow/go-auth-service/sessions/repofakes"
)

// TestCreateAndGet tests session creation and lookup
func TestCreateAndGet(t *testing.T) {
	store := repofakes.NewFakeSessionRepo()
	ctx := context.Background()

	session, err := store.Create(ctx, "user-1", "203.0.113.7", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, session.ID)
	require.Equal(t, "user-1", session.UserID)
	require.Equal(t, "203.0.113.7", session.IPAddress)
	require.Equal(t, "test-agent", session.UserAgent)
	require.True(t, session.Active)
	require.Equal(t, session.CreatedAt.Add(sessions.DefaultLifetime), session.ExpiresAt)

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, session.ID, got.ID)
}

// TestGet_UnknownSession tests lookup of a session that never existed
func TestGet_UnknownSession(t *testing.T) {
	store := repofakes.NewFakeSessionRepo()

	got, err := store.Get(context.Background(), "no-such-session")
	require.NoError(t, err)
	require.Nil(t, got)
}

// TestDelete_SoftDeletes tests that delete deactivates rather than removes
func TestDelete_SoftDeletes(t *testing.T) {
	store := repofakes.NewFakeSessionRepo()
	ctx := context.Background()

	session, err := store.Create(ctx, "user-1", "", "")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, session.ID))

	got, err := store.Get(ctx, session.ID)
	require.NoError(t, err)
	require.Nil(t, got, "deactivated sessions are invisible to Get")

	// Deleting again, or deleting a session that never existed, is a no-op.
	require.NoError(t, store.Delete(ctx, session.ID))
	require.NoError(t, store.Delete(ctx, "no-such-session"))
}

// TestDeleteAllForUser tests bulk revocation scoped to one user
func TestDeleteAllForUser(t *testing.T) {
	store := repofakes.NewFakeSessionRepo()
	ctx := context.Background()

	first, err := store.Create(ctx, "user-1", "", "device-a")
	require.NoError(t, err)
	second, err := store.Create(ctx, "user-1", "", "device-b")
	require.NoError(t, err)
	other, err := store.Create(ctx, "user-2", "", "device-c")
	require.NoError(t, err)

	require.NoError(t, store.DeleteAllForUser(ctx, "user-1"))

	for _, id := range []string{first.ID, second.ID} {
		got, err := store.Get(ctx, id)
		require.NoError(t, err)
		require.Nil(t, got)
	}

	got, err := store.Get(ctx, other.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "other users' sessions survive")
}

// TestSweepExpired tests that only expired active sessions are swept
func TestSweepExpired(t *testing.T) {
	store := repofakes.NewFakeSessionRepo()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.SetNowFunc(func() time.Time { return now })

	expired, err := store.Create(ctx, "user-1", "", "")
	require.NoError(t, err)
	fresh, err := store.Create(ctx, "user-2", "", "")
	require.NoError(t, err)

	// Age only the first session past its lifetime.
	expiredCopy := *expired
	expiredCopy.ExpiresAt = now.Add(-time.Minute)
	require.NoError(t, store.Update(ctx, &expiredCopy))

	count, err := store.SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	got, err := store.Get(ctx, expired.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = store.Get(ctx, fresh.ID)
	require.NoError(t, err)
	require.NotNil(t, got)

	// A second sweep finds nothing new.
	count, err = store.SweepExpired(ctx)
	require.NoError(t, err)
	require.Zero(t, count)
}

// TestExpired tests the session expiry predicate
func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	session := sessions.Session{ExpiresAt: now}

	require.False(t, session.Expired(now.Add(-time.Second)))
	require.True(t, session.Expired(now.Add(time.Second)))
}
