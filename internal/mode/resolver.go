package mode

import "github.com/corvid/aria/internal/shuffle"

// Resolver maps a (mode, current index, playlist length) triple to the next
// or previous index. Manual skips and end-of-track auto-advance consult the
// same resolver so the two paths can never disagree.
type Resolver struct {
	mode Mode
	seq  *shuffle.Sequencer
}

// NewResolver creates a resolver in the given mode.
func NewResolver(m Mode, seq *shuffle.Sequencer) *Resolver {
	if seq == nil {
		seq = shuffle.New()
	}
	return &Resolver{mode: m, seq: seq}
}

// Mode returns the active playback mode.
func (r *Resolver) Mode() Mode {
	return r.mode
}

// SetMode switches the active mode. Entering or leaving Shuffle resets the
// sequencer's bag so a fresh cycle starts.
func (r *Resolver) SetMode(m Mode) {
	if m == r.mode {
		return
	}
	if m == Shuffle || r.mode == Shuffle {
		r.seq.Reset()
	}
	r.mode = m
}

// CycleMode advances to the next mode in the toggle order and returns it.
func (r *Resolver) CycleMode() Mode {
	r.SetMode(r.mode.Cycle())
	return r.mode
}

// ResetShuffle clears the shuffle bag and history, e.g. after the playlist
// changes shape.
func (r *Resolver) ResetShuffle() {
	r.seq.Reset()
}

// Next resolves the track index to play after current in a playlist of n
// tracks. ok is false when playback should stop instead (Linear mode past
// the last track, or an empty playlist).
func (r *Resolver) Next(current, n int) (int, bool) {
	if n == 0 || current < 0 {
		return 0, false
	}

	switch r.mode {
	case RepeatOne:
		return current, true
	case RepeatAll:
		return (current + 1) % n, true
	case Shuffle:
		return r.seq.Next(current, n), true
	default: // Linear
		if current+1 >= n {
			return 0, false
		}
		return current + 1, true
	}
}

// Prev resolves the track index to play before current. ok is false when
// there is nowhere to go (Linear mode at the first track, empty playlist).
func (r *Resolver) Prev(current, n int) (int, bool) {
	if n == 0 || current < 0 {
		return 0, false
	}

	switch r.mode {
	case RepeatOne:
		return current, true
	case RepeatAll:
		return (current - 1 + n) % n, true
	case Shuffle:
		return r.seq.Prev(current, n), true
	default: // Linear
		if current == 0 {
			return 0, false
		}
		return current - 1, true
	}
}
