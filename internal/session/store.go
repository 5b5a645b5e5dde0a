package session

import (
	"github.com/corvid/aria/internal/core"
	"github.com/corvid/aria/internal/history"
	"github.com/corvid/aria/internal/mode"
)

// PersistedState is what a store hands back when the session rehydrates.
type PersistedState struct {
	Tracks       []core.Track
	CurrentIndex int
	Volume       int
	Mode         mode.Mode
	History      []history.Entry
}

// Store is the session's write-through persistence port. The session calls
// it on every mutation of playlist, history, volume, or mode; failures are
// logged, never allowed to affect playback.
type Store interface {
	SavePlaylist(tracks []core.Track, currentIndex int) error
	SaveHistory(entries []history.Entry) error
	SaveVolume(percent int) error
	SaveMode(m mode.Mode) error
	Load() (*PersistedState, error)
	Close() error
}
