// Package mpv implements the audio engine boundary over libmpv. mpv does the
// actual decoding and output; this adapter translates transport commands into
// mpv commands and property reads.
package mpv

import (
	"context"
	"fmt"
	"time"

	"github.com/wildeyedskies/go-mpv/mpv"

	"github.com/corvid/aria/internal/core"
	apperr "github.com/corvid/aria/internal/errors"
)

var _ core.Engine = (*Engine)(nil)

// loadTimeout bounds the wait for mpv to probe a file's duration. It is kept
// short because the caller holds the session lock; a duration that appears
// later is picked up by the position poller through Duration.
const loadTimeout = 500 * time.Millisecond

// Engine wraps a libmpv instance. All methods are safe for the session's
// serialized call pattern; libmpv itself is thread-safe for property access.
type Engine struct {
	handle *mpv.Mpv
}

// New creates and initializes an audio-only mpv instance.
func New() (*Engine, error) {
	handle := mpv.Create()
	handle.SetOptionString("audio-display", "no")
	handle.SetOptionString("video", "no")
	handle.SetOptionString("idle", "yes")

	if err := handle.Initialize(); err != nil {
		handle.TerminateDestroy()
		return nil, fmt.Errorf("%w: failed to initialize mpv: %v", apperr.ErrEngineUnavailable, err)
	}
	return &Engine{handle: handle}, nil
}

// LoadAndPlay loads the file and starts playback, waiting briefly for mpv to
// report the track duration. A zero duration with a nil error means mpv
// could not determine one in time; Duration reports it once demuxing does.
func (e *Engine) LoadAndPlay(ctx context.Context, path string) (time.Duration, error) {
	if err := e.handle.Command([]string{"loadfile", path}); err != nil {
		return 0, fmt.Errorf("loadfile %s: %w", path, err)
	}
	if err := e.handle.SetPropertyString("pause", "no"); err != nil {
		return 0, fmt.Errorf("unpause: %w", err)
	}

	// The duration property becomes available once demuxing starts.
	deadline := time.Now().Add(loadTimeout)
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		default:
		}
		if d, err := e.handle.GetProperty("duration", mpv.FORMAT_DOUBLE); err == nil {
			return secondsToDuration(d.(float64)), nil
		}
		time.Sleep(20 * time.Millisecond)
	}
	return 0, nil
}

// Pause suspends playback.
func (e *Engine) Pause(ctx context.Context) error {
	return e.handle.SetPropertyString("pause", "yes")
}

// Resume continues playback.
func (e *Engine) Resume(ctx context.Context) error {
	return e.handle.SetPropertyString("pause", "no")
}

// Stop halts playback and unloads the current file.
func (e *Engine) Stop(ctx context.Context) error {
	return e.handle.Command([]string{"stop"})
}

// SeekTo moves the playhead to an absolute position.
func (e *Engine) SeekTo(ctx context.Context, pos time.Duration) error {
	return e.handle.Command([]string{"seek", fmt.Sprintf("%.3f", pos.Seconds()), "absolute"})
}

// Duration reports the track duration, zero while mpv has not probed it yet.
func (e *Engine) Duration(ctx context.Context) (time.Duration, error) {
	v, err := e.handle.GetProperty("duration", mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, nil
	}
	return secondsToDuration(v.(float64)), nil
}

// Position reports the current playback position. When nothing is loaded it
// reports the end of whatever last played as zero.
func (e *Engine) Position(ctx context.Context) (time.Duration, error) {
	v, err := e.handle.GetProperty("time-pos", mpv.FORMAT_DOUBLE)
	if err != nil {
		return 0, err
	}
	return secondsToDuration(v.(float64)), nil
}

// SetVolume applies a volume fraction as mpv's 0-100 scale.
func (e *Engine) SetVolume(ctx context.Context, fraction float64) error {
	return e.handle.SetProperty("volume", mpv.FORMAT_DOUBLE, fraction*100)
}

// Close tears the mpv instance down.
func (e *Engine) Close() error {
	e.handle.Command([]string{"quit"})
	e.handle.TerminateDestroy()
	return nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
