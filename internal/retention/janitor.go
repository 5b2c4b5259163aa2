// Package retention purges idle chat sessions. Generated reports already
// expire through the report cache's TTL; sessions have no per-entry expiry,
// so a background janitor sweeps out sessions whose last activity is older
// than the configured idle window.
//
// The janitor runs as a background goroutine and respects context
// cancellation for graceful shutdown.
package retention

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// IdleStore is the slice of the session store the janitor needs.
type IdleStore interface {
	PurgeIdle(cutoff time.Time) int
}

// Janitor periodically purges sessions idle beyond the TTL.
type Janitor struct {
	store    IdleStore
	idleTTL  time.Duration
	interval time.Duration

	now func() time.Time
}

// NewJanitor creates a retention janitor. An idleTTL of zero disables
// purging; intervals under a minute are raised to an hour.
func NewJanitor(store IdleStore, idleTTL, interval time.Duration) *Janitor {
	if interval < time.Minute {
		interval = time.Hour
	}
	return &Janitor{
		store:    store,
		idleTTL:  idleTTL,
		interval: interval,
		now:      time.Now,
	}
}

// Start runs the janitor until ctx is canceled.
func (j *Janitor) Start(ctx context.Context) {
	if j.idleTTL <= 0 {
		log.Info().Msg("Session retention disabled")
		return
	}
	log.Info().
		Dur("idle_ttl", j.idleTTL).
		Dur("interval", j.interval).
		Msg("Session retention janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	// Run once immediately on startup
	j.runCycle()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Session retention janitor stopped")
			return
		case <-ticker.C:
			j.runCycle()
		}
	}
}

func (j *Janitor) runCycle() {
	cutoff := j.now().Add(-j.idleTTL)
	purged := j.store.PurgeIdle(cutoff)
	if purged > 0 {
		log.Info().Int("purged_sessions", purged).Msg("Retention cycle complete")
	}
}
