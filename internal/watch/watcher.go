// Package watch turns playback state snapshots into a stream of discrete
// events, for follow-mode output.
package watch

import (
	"context"
	"time"

	"github.com/corvid/aria/internal/session"
	"github.com/corvid/aria/internal/transport"
)

// EventType represents the type of playback event.
type EventType int

const (
	EventTrackChange EventType = iota
	EventTrackComplete
	EventTrackSkip
	EventPause
	EventResume
	EventVolumeChange
	EventModeChange
)

// Event represents a playback state change.
type Event struct {
	Type      EventType
	Timestamp time.Time
	Previous  *session.Snapshot
	Current   *session.Snapshot
}

// Source provides playback state snapshots.
type Source interface {
	Snapshot() session.Snapshot
}

// Watcher polls a snapshot source for state changes and emits events.
type Watcher struct {
	source   Source
	interval time.Duration
	events   chan Event
	done     chan struct{}
}

// NewWatcher creates a new state watcher.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval == 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		events:   make(chan Event, 16),
		done:     make(chan struct{}),
	}
}

// Events returns the channel of playback events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start begins polling for state changes.
func (w *Watcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	defer close(w.events)

	initial := w.source.Snapshot()
	prev := &initial

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.done:
			return nil
		case <-ticker.C:
			snap := w.source.Snapshot()
			curr := &snap

			events := diffSnapshots(prev, curr)
			for _, e := range events {
				select {
				case w.events <- e:
				default:
					// Drop event if channel is full
				}
			}

			prev = curr
		}
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() {
	close(w.done)
}

// diffSnapshots compares two snapshots and returns detected events.
func diffSnapshots(prev, curr *session.Snapshot) []Event {
	if curr == nil {
		return nil
	}

	now := time.Now()
	var events []Event

	// First poll - no previous state
	if prev == nil {
		if curr.Transport.HasTrack() {
			events = append(events, Event{
				Type:      EventTrackChange,
				Timestamp: now,
				Current:   curr,
			})
		}
		return events
	}

	// Track change detection
	if trackChanged(prev, curr) {
		eventType := EventTrackChange

		// Check if it was a completion vs skip
		if prev.Transport.HasTrack() && wasCompleted(prev) {
			eventType = EventTrackComplete
		} else if prev.Transport.HasTrack() && wasSkipped(prev) {
			eventType = EventTrackSkip
		}

		events = append(events, Event{
			Type:      eventType,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	// Pause/Resume detection
	if prev.Transport.IsPlaying && !curr.Transport.IsPlaying {
		events = append(events, Event{
			Type:      EventPause,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	} else if !prev.Transport.IsPlaying && curr.Transport.IsPlaying {
		events = append(events, Event{
			Type:      EventResume,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	// Volume change detection
	if prev.Transport.Volume != curr.Transport.Volume {
		events = append(events, Event{
			Type:      EventVolumeChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	// Mode change detection
	if prev.Mode != curr.Mode {
		events = append(events, Event{
			Type:      EventModeChange,
			Timestamp: now,
			Previous:  prev,
			Current:   curr,
		})
	}

	return events
}

// trackChanged returns true if the loaded track changed.
func trackChanged(prev, curr *session.Snapshot) bool {
	prevTrack, prevOK := prev.Current()
	currTrack, currOK := curr.Current()
	if !prevOK && !currOK {
		return false
	}
	if prevOK != currOK {
		return true
	}
	return prev.Transport.CurrentIndex != curr.Transport.CurrentIndex ||
		prevTrack.Path != currTrack.Path
}

// wasCompleted returns true if the track reached its end, using the same
// end-of-track threshold the transport uses for auto-advance.
func wasCompleted(snap *session.Snapshot) bool {
	if snap.Transport.Duration == 0 {
		return false
	}
	return snap.Transport.Position >= snap.Transport.Duration-transport.DefaultEndEpsilon
}

// wasSkipped returns true if the track was likely skipped.
func wasSkipped(snap *session.Snapshot) bool {
	if snap.Transport.Duration == 0 {
		return true // Assume skip if we can't determine
	}
	return !wasCompleted(snap)
}
