package core

import "time"

// NoTrack is the CurrentIndex value when nothing is loaded.
const NoTrack = -1

// TransportState is the playback position snapshot owned by the transport
// controller. UI consumers read it; only the controller writes it.
type TransportState struct {
	CurrentIndex int           `json:"current_index"`
	IsPlaying    bool          `json:"is_playing"`
	Position     time.Duration `json:"position"`
	Duration     time.Duration `json:"duration"`
	Volume       int           `json:"volume"`
}

// HasTrack returns true if a track is loaded.
func (s TransportState) HasTrack() bool {
	return s.CurrentIndex != NoTrack
}

// ProgressPercent returns playback progress as a percentage (0-100).
func (s TransportState) ProgressPercent() float64 {
	if s.Duration == 0 {
		return 0
	}
	return float64(s.Position) / float64(s.Duration) * 100
}

// ClampPosition bounds a position to [0, duration]. A zero duration only
// clamps the lower bound, since the track length is not yet known.
func ClampPosition(pos, duration time.Duration) time.Duration {
	if pos < 0 {
		return 0
	}
	if duration > 0 && pos > duration {
		return duration
	}
	return pos
}

// ClampVolume bounds a volume percentage to [0, 100].
func ClampVolume(percent int) int {
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
