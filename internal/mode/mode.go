// Package mode implements the playback mode state machine: which track comes
// next or previous under each mode, for both manual skips and auto-advance.
package mode

// Mode represents the playback traversal mode.
type Mode int

const (
	Linear Mode = iota
	RepeatAll
	RepeatOne
	Shuffle
)

// String returns a human-readable representation of the mode.
func (m Mode) String() string {
	switch m {
	case RepeatAll:
		return "repeat-all"
	case RepeatOne:
		return "repeat-one"
	case Shuffle:
		return "shuffle"
	default:
		return "linear"
	}
}

// Parse converts a string to a Mode. Unrecognized values map to Linear.
func Parse(s string) Mode {
	switch s {
	case "repeat-all":
		return RepeatAll
	case "repeat-one":
		return RepeatOne
	case "shuffle":
		return Shuffle
	default:
		return Linear
	}
}

// Cycle returns the next mode in the fixed toggle order
// Linear → RepeatAll → RepeatOne → Shuffle → Linear.
func (m Mode) Cycle() Mode {
	switch m {
	case Linear:
		return RepeatAll
	case RepeatAll:
		return RepeatOne
	case RepeatOne:
		return Shuffle
	default:
		return Linear
	}
}
