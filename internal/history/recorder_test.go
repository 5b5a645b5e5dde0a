package history

import (
	"fmt"
	"testing"
	"time"

	"github.com/corvid/aria/internal/core"
)

func TestRecordNewTrack(t *testing.T) {
	r := NewRecorder(0)
	r.Record(core.NewTrack("/music/a.mp3"))

	entries := r.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].PlayCount != 1 {
		t.Errorf("PlayCount = %d, want 1", entries[0].PlayCount)
	}
	if entries[0].Track.Path != "/music/a.mp3" {
		t.Errorf("Track.Path = %q, want %q", entries[0].Track.Path, "/music/a.mp3")
	}
}

func TestRecordSameTrackTwiceDedupes(t *testing.T) {
	r := NewRecorder(0)
	track := core.NewTrack("/music/a.mp3")

	r.Record(track)
	r.Record(track)

	entries := r.Entries()
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}
	if entries[0].PlayCount != 2 {
		t.Errorf("PlayCount = %d, want 2", entries[0].PlayCount)
	}
}

func TestReplayMovesEntryToFront(t *testing.T) {
	r := NewRecorder(0)
	times := []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 1, 0, 0, time.UTC),
		time.Date(2025, 1, 1, 0, 2, 0, 0, time.UTC),
	}
	i := 0
	r.now = func() time.Time { ts := times[i]; i++; return ts }

	r.Record(core.NewTrack("/music/a.mp3"))
	r.Record(core.NewTrack("/music/b.mp3"))
	r.Record(core.NewTrack("/music/a.mp3"))

	entries := r.Entries()
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if entries[0].Track.Path != "/music/a.mp3" {
		t.Errorf("front entry = %q, want a.mp3", entries[0].Track.Path)
	}
	if entries[0].PlayCount != 2 {
		t.Errorf("front PlayCount = %d, want 2", entries[0].PlayCount)
	}
	if !entries[0].LastPlayedAt.Equal(times[2]) {
		t.Errorf("front LastPlayedAt = %v, want %v", entries[0].LastPlayedAt, times[2])
	}
	if entries[1].Track.Path != "/music/b.mp3" {
		t.Errorf("second entry = %q, want b.mp3", entries[1].Track.Path)
	}
}

func TestLogNeverExceedsLimit(t *testing.T) {
	r := NewRecorder(0)
	for i := 0; i < 250; i++ {
		r.Record(core.NewTrack(fmt.Sprintf("/music/%03d.mp3", i)))
	}

	if r.Len() != DefaultLimit {
		t.Errorf("Len() = %d, want %d", r.Len(), DefaultLimit)
	}
	// The newest entries survive; the oldest were dropped from the tail.
	entries := r.Entries()
	if entries[0].Track.Path != "/music/249.mp3" {
		t.Errorf("front entry = %q, want newest", entries[0].Track.Path)
	}
	last := entries[len(entries)-1]
	if last.Track.Path != "/music/150.mp3" {
		t.Errorf("tail entry = %q, want /music/150.mp3", last.Track.Path)
	}
}

func TestClear(t *testing.T) {
	r := NewRecorder(0)
	r.Record(core.NewTrack("/music/a.mp3"))
	r.Clear()

	if r.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", r.Len())
	}
}
