package core

import (
	"context"
	"time"
)

// Engine defines the boundary to the native audio backend. The core treats
// it as an opaque command/response service: commands may fail, and the
// position it reports is the authoritative one.
type Engine interface {
	// LoadAndPlay loads the file at path and starts playback, returning the
	// track duration when the backend can determine it (zero otherwise).
	LoadAndPlay(ctx context.Context, path string) (time.Duration, error)

	// Pause and Resume toggle playback without unloading the track.
	Pause(ctx context.Context) error
	Resume(ctx context.Context) error

	// Stop halts playback and unloads the current track.
	Stop(ctx context.Context) error

	// SeekTo moves playback to an absolute position.
	SeekTo(ctx context.Context, pos time.Duration) error

	// Position reports the authoritative playback position.
	Position(ctx context.Context) (time.Duration, error)

	// Duration reports the authoritative track duration, zero while the
	// backend has not determined it yet.
	Duration(ctx context.Context) (time.Duration, error)

	// SetVolume applies a volume as a fraction in [0.0, 1.0].
	SetVolume(ctx context.Context, fraction float64) error

	// Close releases the backend.
	Close() error
}
