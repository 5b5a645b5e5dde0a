package core

import "fmt"

// Playlist is an ordered, reorderable sequence of tracks. It is owned
// exclusively by the playback session; nothing else mutates it.
type Playlist struct {
	tracks []Track
}

// NewPlaylist creates a playlist containing the given tracks.
func NewPlaylist(tracks []Track) *Playlist {
	p := &Playlist{}
	p.Replace(tracks)
	return p
}

// Len returns the number of tracks in the playlist.
func (p *Playlist) Len() int {
	if p == nil {
		return 0
	}
	return len(p.tracks)
}

// IsEmpty returns true if the playlist has no tracks.
func (p *Playlist) IsEmpty() bool {
	return p.Len() == 0
}

// At returns the track at index i.
func (p *Playlist) At(i int) (Track, bool) {
	if p == nil || i < 0 || i >= len(p.tracks) {
		return Track{}, false
	}
	return p.tracks[i], true
}

// Tracks returns a copy of the track sequence.
func (p *Playlist) Tracks() []Track {
	if p == nil {
		return nil
	}
	out := make([]Track, len(p.tracks))
	copy(out, p.tracks)
	return out
}

// Replace swaps the playlist contents for a new track sequence.
func (p *Playlist) Replace(tracks []Track) {
	p.tracks = make([]Track, len(tracks))
	copy(p.tracks, tracks)
}

// Clear removes all tracks.
func (p *Playlist) Clear() {
	p.tracks = nil
}

// Move relocates the track at from to position to, shifting the tracks in
// between. Both indices are positions in the current ordering.
func (p *Playlist) Move(from, to int) error {
	n := p.Len()
	if from < 0 || from >= n {
		return fmt.Errorf("move: from index %d out of range [0,%d)", from, n)
	}
	if to < 0 || to >= n {
		return fmt.Errorf("move: to index %d out of range [0,%d)", to, n)
	}
	if from == to {
		return nil
	}
	t := p.tracks[from]
	p.tracks = append(p.tracks[:from], p.tracks[from+1:]...)
	rest := append(p.tracks[:to:to], t)
	p.tracks = append(rest, p.tracks[to:]...)
	return nil
}

// RemapIndex returns where the track at index i before a Move(from, to)
// lives after it. Used to keep the current-track index pointing at the same
// track across reorders.
func RemapIndex(i, from, to int) int {
	switch {
	case i == from:
		return to
	case from < i && i <= to:
		return i - 1
	case to <= i && i < from:
		return i + 1
	default:
		return i
	}
}
