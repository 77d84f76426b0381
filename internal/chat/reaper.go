package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultReapInterval is how often empty rooms are swept.
const DefaultReapInterval = time.Hour

// Reaper periodically deletes rooms that were left empty without going
// through the disconnect path.
type Reaper struct {
	registry *Registry
	interval time.Duration
	log      zerolog.Logger
}

// NewReaper creates a Reaper over reg. Non-positive intervals fall back to
// DefaultReapInterval.
func NewReaper(reg *Registry, interval time.Duration, logger zerolog.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}
	return &Reaper{
		registry: reg,
		interval: interval,
		log:      logger.With().Str("component", "reaper").Logger(),
	}
}

// Run sweeps every interval until ctx is done.
func (r *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Msg("reaper started")
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("reaper stopped")
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Sweep deletes all empty rooms now and returns how many were removed.
func (r *Reaper) Sweep() int {
	codes := r.registry.DeleteEmpty()
	for _, code := range codes {
		r.log.Info().Str("room", code).Msg("cleaned inactive chat")
	}
	return len(codes)
}
