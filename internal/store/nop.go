package store

import (
	"github.com/corvid/aria/internal/core"
	"github.com/corvid/aria/internal/history"
	"github.com/corvid/aria/internal/mode"
	"github.com/corvid/aria/internal/session"
)

// Nop discards all writes and loads nothing. Used when persistence is
// disabled.
type Nop struct{}

func (Nop) SavePlaylist([]core.Track, int) error   { return nil }
func (Nop) SaveHistory([]history.Entry) error      { return nil }
func (Nop) SaveVolume(int) error                   { return nil }
func (Nop) SaveMode(mode.Mode) error               { return nil }
func (Nop) Load() (*session.PersistedState, error) { return nil, nil }
func (Nop) Close() error                           { return nil }

var _ session.Store = Nop{}
