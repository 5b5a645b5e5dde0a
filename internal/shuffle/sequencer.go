// Package shuffle produces a non-repeating random traversal over playlist
// indices. A bag of consumed indices guarantees every index plays once per
// cycle, and an explicit history stack makes "previous" undo "next" exactly.
package shuffle

import "math/rand/v2"

// Sequencer tracks which playlist indices have played since the last
// reshuffle. It holds indices, not tracks, so playlist reorders invalidate
// it; callers reset on reorder or mode change.
type Sequencer struct {
	rng      *rand.Rand
	consumed map[int]struct{}
	stack    []int
}

// New creates a sequencer with a randomly seeded generator.
func New() *Sequencer {
	return NewSeeded(rand.Uint64(), rand.Uint64())
}

// NewSeeded creates a sequencer with a deterministic generator.
func NewSeeded(seed1, seed2 uint64) *Sequencer {
	return &Sequencer{
		rng:      rand.New(rand.NewPCG(seed1, seed2)),
		consumed: make(map[int]struct{}),
	}
}

// Next returns the next index to play after justPlayed in a playlist of n
// tracks. No index repeats until all n have been produced; when the bag is
// exhausted it resets to contain only justPlayed and a new cycle begins.
func (s *Sequencer) Next(justPlayed, n int) int {
	if n <= 1 {
		return justPlayed
	}

	s.consumed[justPlayed] = struct{}{}

	eligible := s.eligible(n)
	if len(eligible) == 0 {
		// Cycle complete. Reset the bag so only the track now finishing is
		// excluded from the next cycle.
		s.consumed = map[int]struct{}{justPlayed: {}}
		eligible = s.eligible(n)
	}

	pick := eligible[s.rng.IntN(len(eligible))]
	s.consumed[pick] = struct{}{}
	s.stack = append(s.stack, justPlayed)
	return pick
}

// Prev undoes the most recent Next, returning the index that was playing
// before it. With no history it falls back to a fresh random pick that
// excludes current.
func (s *Sequencer) Prev(current, n int) int {
	if len(s.stack) > 0 {
		last := len(s.stack) - 1
		idx := s.stack[last]
		s.stack = s.stack[:last]
		return idx
	}

	if n <= 1 {
		return current
	}
	idx := s.rng.IntN(n - 1)
	if idx >= current {
		idx++
	}
	return idx
}

// Reset empties the bag and the history stack. Called when shuffle mode is
// entered or left, or when the playlist changes shape.
func (s *Sequencer) Reset() {
	s.consumed = make(map[int]struct{})
	s.stack = nil
}

// eligible returns the unconsumed indices in [0, n).
func (s *Sequencer) eligible(n int) []int {
	out := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if _, ok := s.consumed[i]; !ok {
			out = append(out, i)
		}
	}
	return out
}
