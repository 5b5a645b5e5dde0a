package core

import (
	"path/filepath"
	"time"
)

// TrackMetadata holds optional tag information for a track. It is supplied
// by whatever scanned the file; the playback core never reads tags itself.
type TrackMetadata struct {
	Title       string        `json:"title,omitempty"`
	Artist      string        `json:"artist,omitempty"`
	Album       string        `json:"album,omitempty"`
	TrackNumber int           `json:"track_number,omitempty"`
	Year        int           `json:"year,omitempty"`
	Genre       string        `json:"genre,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
	HasArtwork  bool          `json:"has_artwork,omitempty"`
}

// Track represents a playable audio file. Identity is the Path; two playlist
// entries with the same path are the same track at different positions.
type Track struct {
	Path        string         `json:"path"`
	DisplayName string         `json:"display_name"`
	Meta        *TrackMetadata `json:"meta,omitempty"`
	Rating      int            `json:"rating"`
	Favorite    bool           `json:"favorite"`
}

// NewTrack builds a track from a file path, deriving the display name from
// the base filename when no metadata is available.
func NewTrack(path string) Track {
	return Track{
		Path:        path,
		DisplayName: filepath.Base(path),
	}
}

// Title returns the metadata title if present, otherwise the display name.
func (t Track) Title() string {
	if t.Meta != nil && t.Meta.Title != "" {
		return t.Meta.Title
	}
	return t.DisplayName
}

// Duration returns the declared metadata duration, or zero if unknown.
// The engine-reported duration takes precedence once the track is loaded.
func (t Track) Duration() time.Duration {
	if t.Meta != nil {
		return t.Meta.Duration
	}
	return 0
}
