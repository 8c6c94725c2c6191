package sessions_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/docuflow/go-auth-service/sessions"
	"github.com/docuflow/go-auth-service/sessions/repofakes"
)

// TestSweeper_Run tests that the loop sweeps on each tick and stops on cancel
func TestSweeper_Run(t *testing.T) {
	store := repofakes.NewFakeSessionRepo()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session, err := store.Create(ctx, "user-1", "", "")
	require.NoError(t, err)

	// Age the session so the next sweep deactivates it.
	aged := *session
	aged.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Update(ctx, &aged))

	sweeper := sessions.NewSweeper(store, 5*time.Millisecond, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		sweeper.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		got, err := store.Get(ctx, session.ID)
		return err == nil && got == nil
	}, time.Second, 5*time.Millisecond, "expired session should be swept")

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on context cancel")
	}
}
