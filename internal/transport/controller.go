// Package transport owns the playback position state: which track is loaded,
// whether it is playing, and where the playhead is. It issues commands to the
// audio engine and reconciles the optimistic UI position against the
// authoritative one the engine reports.
package transport

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corvid/aria/internal/core"
	apperr "github.com/corvid/aria/internal/errors"
)

const (
	// DefaultSettleDelay is how long a seek is given to take effect before
	// the authoritative position is re-read.
	DefaultSettleDelay = 150 * time.Millisecond

	// DefaultEndEpsilon absorbs timing jitter in the end-of-track check.
	DefaultEndEpsilon = 100 * time.Millisecond
)

// Recorder receives successfully started tracks for the playback log.
type Recorder interface {
	Record(track core.Track)
}

// Option configures a Controller.
type Option func(*Controller)

// WithSettleDelay overrides the seek settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Controller) {
		c.settle = d
	}
}

// WithEndEpsilon overrides the end-of-track tolerance.
func WithEndEpsilon(d time.Duration) Option {
	return func(c *Controller) {
		c.epsilon = d
	}
}

// WithRecorder attaches a playback log.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		c.recorder = r
	}
}

// Controller mediates between callers and the audio engine. Play, seek and
// volume state transitions happen here and nowhere else. Callers serialize
// command calls; the seek reconciliation goroutine is the only internal
// concurrency, guarded by a generation counter so a stale authoritative
// re-read never clobbers state written by a newer command.
type Controller struct {
	engine   core.Engine
	logger   *log.Logger
	recorder Recorder
	settle   time.Duration
	epsilon  time.Duration

	mu    sync.Mutex
	state core.TransportState

	gen        atomic.Uint64
	reconciles sync.WaitGroup
}

// New creates a controller for the given engine.
func New(engine core.Engine, logger *log.Logger, opts ...Option) *Controller {
	c := &Controller{
		engine:  engine,
		logger:  logger,
		settle:  DefaultSettleDelay,
		epsilon: DefaultEndEpsilon,
	}
	c.state.CurrentIndex = core.NoTrack
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns a snapshot of the transport state.
func (c *Controller) State() core.TransportState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Play loads and starts the track, recording it in the playback log on
// success. index is the track's playlist position. Engine failure leaves the
// transport stopped and returns a classified error; it never panics through
// to the caller.
func (c *Controller) Play(ctx context.Context, track core.Track, index int) error {
	c.gen.Add(1)

	dur, err := c.engine.LoadAndPlay(ctx, track.Path)
	if err != nil {
		c.mu.Lock()
		c.state.IsPlaying = false
		c.mu.Unlock()
		c.logger.Error("play failed", "path", track.Path, "err", err)
		return fmt.Errorf("%w: %s: %v", apperr.ErrPlaybackRejected, track.Path, err)
	}

	if dur <= 0 {
		// Engine could not determine a duration; fall back to the track's
		// declared metadata.
		dur = track.Duration()
	}

	c.mu.Lock()
	c.state.CurrentIndex = index
	c.state.Duration = dur
	c.state.Position = 0
	c.state.IsPlaying = true
	volume := c.state.Volume
	c.mu.Unlock()

	if err := c.engine.SetVolume(ctx, float64(volume)/100); err != nil {
		c.logger.Warn("volume reapply failed", "err", err)
	}

	if c.recorder != nil {
		c.recorder.Record(track)
	}

	c.logger.Debug("playing", "path", track.Path, "index", index, "duration", dur)
	return nil
}

// TogglePlay pauses or resumes the current track. With no track loaded it is
// a no-op. The playing flag flips only after the engine acknowledges; on
// failure the transport is downgraded to stopped.
func (c *Controller) TogglePlay(ctx context.Context) error {
	c.mu.Lock()
	if !c.state.HasTrack() {
		c.mu.Unlock()
		return nil
	}
	playing := c.state.IsPlaying
	c.mu.Unlock()

	var err error
	if playing {
		err = c.engine.Pause(ctx)
	} else {
		err = c.engine.Resume(ctx)
	}
	if err != nil {
		c.mu.Lock()
		c.state.IsPlaying = false
		c.mu.Unlock()
		c.logger.Error("toggle failed", "was_playing", playing, "err", err)
		return fmt.Errorf("%w: %v", apperr.ErrEngineUnavailable, err)
	}

	c.mu.Lock()
	c.state.IsPlaying = !playing
	c.mu.Unlock()
	return nil
}

// Seek moves the playhead to target, clamped to [0, duration]. The position
// is updated optimistically before the engine confirms; after a settle delay
// the authoritative position is re-read and overwrites the optimistic value.
// The re-read happens even when the seek command fails, so the displayed
// position stays truthful.
func (c *Controller) Seek(ctx context.Context, target time.Duration) error {
	c.mu.Lock()
	if !c.state.HasTrack() {
		c.mu.Unlock()
		return nil
	}
	target = core.ClampPosition(target, c.state.Duration)
	c.state.Position = target
	c.mu.Unlock()

	gen := c.gen.Add(1)

	err := c.engine.SeekTo(ctx, target)
	if err != nil {
		c.logger.Warn("seek failed", "target", target, "err", err)
		err = fmt.Errorf("%w: %v", apperr.ErrSeekRejected, err)
	}

	c.reconciles.Add(1)
	go func() {
		defer c.reconciles.Done()
		time.Sleep(c.settle)

		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		pos, perr := c.engine.Position(rctx)
		if perr != nil {
			return
		}
		c.applyAuthoritative(pos, gen)
	}()

	return err
}

// SkipBy seeks relative to the current position.
func (c *Controller) SkipBy(ctx context.Context, delta time.Duration) error {
	c.mu.Lock()
	target := c.state.Position + delta
	c.mu.Unlock()
	return c.Seek(ctx, target)
}

// SetVolume applies a clamped volume percentage. The displayed value is
// updated optimistically and kept even if the engine rejects the change;
// volume is treated as a UI preference more than transport truth.
func (c *Controller) SetVolume(ctx context.Context, percent int) error {
	percent = core.ClampVolume(percent)

	c.mu.Lock()
	c.state.Volume = percent
	c.mu.Unlock()

	if err := c.engine.SetVolume(ctx, float64(percent)/100); err != nil {
		c.logger.Warn("set volume failed", "percent", percent, "err", err)
		return fmt.Errorf("%w: %v", apperr.ErrVolumeRejected, err)
	}
	return nil
}

// RestoreVolume sets the displayed volume without touching the engine, used
// when rehydrating persisted state before anything is playing.
func (c *Controller) RestoreVolume(percent int) {
	c.mu.Lock()
	c.state.Volume = core.ClampVolume(percent)
	c.mu.Unlock()
}

// Stop halts the engine and resets the transport to empty.
func (c *Controller) Stop(ctx context.Context) error {
	c.gen.Add(1)

	err := c.engine.Stop(ctx)

	c.mu.Lock()
	c.state.CurrentIndex = core.NoTrack
	c.state.IsPlaying = false
	c.state.Position = 0
	c.state.Duration = 0
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("stop failed", "err", err)
		return fmt.Errorf("%w: %v", apperr.ErrEngineUnavailable, err)
	}
	return nil
}

// Suspend stops playback without unloading the track or moving the
// playhead: the engine is paused best-effort and the playing flag cleared.
// Used when a manual skip has nowhere to go.
func (c *Controller) Suspend(ctx context.Context) {
	c.mu.Lock()
	playing := c.state.IsPlaying
	c.state.IsPlaying = false
	c.mu.Unlock()

	if playing {
		if err := c.engine.Pause(ctx); err != nil {
			c.logger.Warn("suspend pause failed", "err", err)
		}
	}
}

// UpdateDuration records a duration the engine reported after playback
// started, for tracks whose length was unknown at load time. With no track
// loaded, or a non-positive duration, it is ignored.
func (c *Controller) UpdateDuration(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.HasTrack() || d <= 0 {
		return
	}
	c.state.Duration = d
}

// UpdateIndex remaps the current track index after a playlist reorder. It
// does not touch the engine; the same track keeps playing.
func (c *Controller) UpdateIndex(index int) {
	c.mu.Lock()
	c.state.CurrentIndex = index
	c.mu.Unlock()
}

// HoldAtEnd marks playback finished with the playhead held at the track's
// end. Used when linear mode runs out of playlist.
func (c *Controller) HoldAtEnd() {
	c.mu.Lock()
	c.state.IsPlaying = false
	c.state.Position = c.state.Duration
	c.mu.Unlock()
}

// ApplyPoll records an authoritative position reported by the poller and
// reports whether the track has reached its end. Poll writes are
// last-observed-wins; they are ignored once playback has stopped.
func (c *Controller) ApplyPoll(pos time.Duration) (atEnd bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.IsPlaying {
		return false
	}
	c.state.Position = core.ClampPosition(pos, c.state.Duration)
	if c.state.Duration == 0 {
		return false
	}
	return pos >= c.state.Duration-c.epsilon
}

// applyAuthoritative overwrites the position with an engine-reported value
// unless a newer command has superseded the read.
func (c *Controller) applyAuthoritative(pos time.Duration, gen uint64) {
	if c.gen.Load() != gen {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.state.HasTrack() {
		return
	}
	c.state.Position = core.ClampPosition(pos, c.state.Duration)
}

// Settle blocks until in-flight seek reconciliations finish. Tests use it to
// observe post-settle state deterministically.
func (c *Controller) Settle() {
	c.reconciles.Wait()
}
