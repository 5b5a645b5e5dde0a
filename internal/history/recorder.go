// Package history keeps a bounded, deduplicated log of playback events,
// most recent first. The log is observational only; nothing consults it to
// gate playback.
package history

import (
	"time"

	"github.com/corvid/aria/internal/core"
)

// DefaultLimit is the maximum number of entries kept when none is configured.
const DefaultLimit = 100

// Entry records plays of a single track.
type Entry struct {
	Track        core.Track `json:"track"`
	LastPlayedAt time.Time  `json:"last_played_at"`
	PlayCount    int        `json:"play_count"`
}

// Recorder is the bounded playback log.
type Recorder struct {
	entries []Entry
	limit   int
	now     func() time.Time
}

// NewRecorder creates a recorder capped at limit entries. A non-positive
// limit uses DefaultLimit.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{limit: limit, now: time.Now}
}

// Record logs a play of track. A track already present is bumped to the
// front with its count incremented rather than duplicated; the log is then
// truncated to the cap from the tail.
func (r *Recorder) Record(track core.Track) {
	now := r.now()

	for i, e := range r.entries {
		if e.Track.Path == track.Path {
			e.PlayCount++
			e.LastPlayedAt = now
			e.Track = track
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			r.entries = append([]Entry{e}, r.entries...)
			return
		}
	}

	r.entries = append([]Entry{{
		Track:        track,
		LastPlayedAt: now,
		PlayCount:    1,
	}}, r.entries...)

	if len(r.entries) > r.limit {
		r.entries = r.entries[:r.limit]
	}
}

// Restore replaces the log contents, most recent first, truncating to the
// cap. Used when rehydrating from the store.
func (r *Recorder) Restore(entries []Entry) {
	r.entries = make([]Entry, 0, len(entries))
	r.entries = append(r.entries, entries...)
	if len(r.entries) > r.limit {
		r.entries = r.entries[:r.limit]
	}
}

// Clear empties the log.
func (r *Recorder) Clear() {
	r.entries = nil
}

// Entries returns a copy of the log, most recent first.
func (r *Recorder) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of entries.
func (r *Recorder) Len() int {
	return len(r.entries)
}
