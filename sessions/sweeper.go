package sessions

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Sweeper periodically soft-invalidates expired sessions. The interval is a
// deployment decision; the sweep itself is safe to run concurrently with
// normal traffic since it is a one-directional flag flip.
type Sweeper struct {
	store    Store
	interval time.Duration
	logger   zerolog.Logger
}

func NewSweeper(store Store, interval time.Duration, logger zerolog.Logger) *Sweeper {
	return &Sweeper{store: store, interval: interval, logger: logger}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			count, err := s.store.SweepExpired(ctx)
			if err != nil {
				s.logger.Error().Err(err).Msg("session sweep failed")
				continue
			}
			if count > 0 {
				s.logger.Info().Int64("count", count).Msg("cleaned up expired sessions")
			}
		}
	}
}
