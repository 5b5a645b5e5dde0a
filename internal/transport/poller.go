package transport

import (
	"context"
	"time"
)

// DefaultPollInterval is the nominal cadence of position polling.
const DefaultPollInterval = 100 * time.Millisecond

// Poller drives the fixed-cadence position poll while a track is playing.
// It only schedules; the tick callback does the actual engine read, so the
// read happens under the session's lock and a stale position can never
// clobber state written by a newer command. The session stops the poller
// whenever playback stops and restarts it on the next play.
type Poller struct {
	interval time.Duration
	onTick   func(ctx context.Context)
	done     chan struct{}
}

// NewPoller creates a poller invoking onTick at the given cadence.
func NewPoller(interval time.Duration, onTick func(ctx context.Context)) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		interval: interval,
		onTick:   onTick,
		done:     make(chan struct{}),
	}
}

// Start begins ticking until the context is cancelled or Stop is called.
// It blocks; run it in its own goroutine.
func (p *Poller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-ticker.C:
			p.onTick(ctx)
		}
	}
}

// Stop terminates the polling loop. Safe to call once.
func (p *Poller) Stop() {
	close(p.done)
}
