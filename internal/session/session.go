// Package session is the composition root of the playback core. It wires the
// playlist, mode state machine, transport controller, history recorder, and
// persistence port together and exposes the operations the UI layer consumes.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corvid/aria/internal/core"
	apperr "github.com/corvid/aria/internal/errors"
	"github.com/corvid/aria/internal/history"
	"github.com/corvid/aria/internal/mode"
	"github.com/corvid/aria/internal/shuffle"
	"github.com/corvid/aria/internal/transport"
)

// Snapshot is the read-only view of session state for rendering.
type Snapshot struct {
	Transport core.TransportState `json:"transport"`
	Tracks    []core.Track        `json:"tracks"`
	Mode      mode.Mode           `json:"mode"`
	History   []history.Entry     `json:"history"`
}

// Current returns the currently loaded track, if any.
func (s Snapshot) Current() (core.Track, bool) {
	if !s.Transport.HasTrack() || s.Transport.CurrentIndex >= len(s.Tracks) {
		return core.Track{}, false
	}
	return s.Tracks[s.Transport.CurrentIndex], true
}

// Option configures a Session.
type Option func(*Session)

// WithStore attaches a persistence port.
func WithStore(st Store) Option {
	return func(s *Session) { s.store = st }
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.logger = l }
}

// WithPollInterval overrides the position poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(s *Session) { s.pollInterval = d }
}

// WithHistoryLimit overrides the history cap.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.historyLimit = n }
}

// WithTransportOptions forwards options to the transport controller.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(s *Session) { s.transportOpts = opts }
}

// WithShuffleSequencer injects a sequencer, used by tests for determinism.
func WithShuffleSequencer(seq *shuffle.Sequencer) Option {
	return func(s *Session) { s.seq = seq }
}

// Session owns all mutable playback state. Its mutex is the single logical
// owner of playlist, mode, history and transport mutations; the position
// poller is the only background activity and funnels back in through
// handleTick.
type Session struct {
	mu sync.Mutex

	engine    core.Engine
	transport *transport.Controller
	resolver  *mode.Resolver
	recorder  *history.Recorder
	playlist  *core.Playlist
	store     Store
	logger    *log.Logger

	pollInterval  time.Duration
	historyLimit  int
	transportOpts []transport.Option
	seq           *shuffle.Sequencer

	pollCancel context.CancelFunc
	finished   chan struct{}

	// restoredIndex is the playlist index that was current when state was
	// last persisted, kept so a resume can start where playback left off.
	restoredIndex int

	// advancePending latches end-of-track detection so auto-advance fires
	// exactly once per track end; a successful play clears it.
	advancePending bool
	closed         bool
}

// New creates a session around the given engine.
func New(engine core.Engine, opts ...Option) *Session {
	s := &Session{
		engine:        engine,
		logger:        log.New(io.Discard),
		pollInterval:  transport.DefaultPollInterval,
		historyLimit:  history.DefaultLimit,
		playlist:      core.NewPlaylist(nil),
		finished:      make(chan struct{}, 1),
		restoredIndex: core.NoTrack,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seq == nil {
		s.seq = shuffle.New()
	}
	s.recorder = history.NewRecorder(s.historyLimit)
	s.resolver = mode.NewResolver(mode.Linear, s.seq)

	topts := append([]transport.Option{
		transport.WithRecorder(&persistingRecorder{s: s}),
	}, s.transportOpts...)
	s.transport = transport.New(engine, s.logger, topts...)

	return s
}

// persistingRecorder forwards played tracks to the history recorder and
// writes the updated log through the store.
type persistingRecorder struct {
	s *Session
}

func (r *persistingRecorder) Record(track core.Track) {
	r.s.recorder.Record(track)
	r.s.persistHistory()
}

// Restore rehydrates playlist, mode, volume and history from the store.
// Nothing starts playing; transport stays empty.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}
	st, err := s.store.Load()
	if err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	if st == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlist.Replace(st.Tracks)
	s.resolver.SetMode(st.Mode)
	s.transport.RestoreVolume(st.Volume)
	s.recorder.Restore(st.History)
	if st.CurrentIndex >= 0 && st.CurrentIndex < s.playlist.Len() {
		s.restoredIndex = st.CurrentIndex
	} else {
		s.restoredIndex = core.NoTrack
	}
	return nil
}

// RestoredIndex returns the playlist index that was current when state was
// last persisted, or core.NoTrack when there is none. Loading a new playlist
// invalidates it.
func (s *Session) RestoredIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoredIndex
}

// Snapshot returns the read-only session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Transport: s.transport.State(),
		Tracks:    s.playlist.Tracks(),
		Mode:      s.resolver.Mode(),
		History:   s.recorder.Entries(),
	}
}

// Finished signals when auto-advance runs off the end of the playlist. Only
// linear mode ever finishes; the repeating modes play until stopped.
func (s *Session) Finished() <-chan struct{} {
	return s.finished
}

// Mode returns the active playback mode.
func (s *Session) Mode() mode.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolver.Mode()
}

// LoadPlaylist replaces the playlist. Any current playback is stopped, since
// the indices it referred to no longer mean anything.
func (s *Session) LoadPlaylist(ctx context.Context, tracks []core.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	s.cancelPendingAdvance()
	s.restoredIndex = core.NoTrack
	s.stopPoller()
	if err := s.transport.Stop(ctx); err != nil {
		s.logger.Warn("stop before playlist load failed", "err", err)
	}
	s.playlist.Replace(tracks)
	s.resolver.ResetShuffle()
	s.persistPlaylist()
	return nil
}

// Play starts playback of the playlist entry at index.
func (s *Session) Play(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	if s.playlist.IsEmpty() {
		return apperr.ErrEmptyPlaylist
	}
	return s.play(ctx, index)
}

// TogglePlay pauses or resumes the current track, managing the poller across
// the transition. No-op when nothing is loaded.
func (s *Session) TogglePlay(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}

	if err := s.transport.TogglePlay(ctx); err != nil {
		s.stopPoller()
		return err
	}
	if s.transport.State().IsPlaying {
		s.startPoller()
	} else {
		s.stopPoller()
	}
	return nil
}

// Next advances to the track the current mode resolves as next. In linear
// mode past the last track, playback stops and the current index is kept.
func (s *Session) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	s.cancelPendingAdvance()

	cur := s.transport.State().CurrentIndex
	next, ok := s.resolver.Next(cur, s.playlist.Len())
	if !ok {
		s.transport.Suspend(ctx)
		s.stopPoller()
		return nil
	}
	return s.play(ctx, next)
}

// Previous steps back to the track the current mode resolves as previous.
// In linear mode at the first track it is a no-op.
func (s *Session) Previous(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	s.cancelPendingAdvance()

	cur := s.transport.State().CurrentIndex
	prev, ok := s.resolver.Prev(cur, s.playlist.Len())
	if !ok {
		return nil
	}
	return s.play(ctx, prev)
}

// Seek moves the playhead to an absolute position.
func (s *Session) Seek(ctx context.Context, target time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	return s.transport.Seek(ctx, target)
}

// SkipForward seeks ahead by delta.
func (s *Session) SkipForward(ctx context.Context, delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	return s.transport.SkipBy(ctx, delta)
}

// SkipBackward seeks back by delta.
func (s *Session) SkipBackward(ctx context.Context, delta time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	return s.transport.SkipBy(ctx, -delta)
}

// SetVolume applies a volume percentage and writes it through the store.
// The persisted value follows the displayed one, so a rejected engine
// command still persists the optimistic setting.
func (s *Session) SetVolume(ctx context.Context, percent int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	err := s.transport.SetVolume(ctx, percent)
	if s.store != nil {
		if serr := s.store.SaveVolume(s.transport.State().Volume); serr != nil {
			s.logger.Warn("persist volume failed", "err", serr)
		}
	}
	return err
}

// CyclePlaybackMode toggles to the next mode in the fixed order and
// returns it.
func (s *Session) CyclePlaybackMode() mode.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.resolver.CycleMode()
	s.persistMode(m)
	return m
}

// SetPlaybackMode switches directly to the given mode.
func (s *Session) SetPlaybackMode(m mode.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resolver.SetMode(m)
	s.persistMode(m)
}

// Reorder moves a playlist entry, remapping the current index so the playing
// track's identity is preserved across the move.
func (s *Session) Reorder(from, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.playlist.Move(from, to); err != nil {
		return err
	}
	if cur := s.transport.State().CurrentIndex; cur != core.NoTrack {
		s.transport.UpdateIndex(core.RemapIndex(cur, from, to))
	}
	// Shuffle bag indices no longer line up with the playlist.
	s.resolver.ResetShuffle()
	s.persistPlaylist()
	return nil
}

// ClearPlaylist stops playback and empties the playlist.
func (s *Session) ClearPlaylist(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return apperr.ErrSessionClosed
	}
	s.cancelPendingAdvance()
	s.stopPoller()
	err := s.transport.Stop(ctx)
	s.playlist.Clear()
	s.resolver.ResetShuffle()
	s.persistPlaylist()
	return err
}

// ClearHistory empties the playback log.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recorder.Clear()
	s.persistHistory()
}

// Close stops the poller, waits out any in-flight seek reconciliation, and
// releases the engine and store. The session is unusable afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.stopPoller()
	// A seek issued just before teardown still has a reconciliation goroutine
	// waiting to re-read the engine position; it must not land on a released
	// engine handle.
	s.transport.Settle()

	var errs []error
	if err := s.engine.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// play starts the playlist entry at index. Caller holds s.mu.
func (s *Session) play(ctx context.Context, index int) error {
	track, ok := s.playlist.At(index)
	if !ok {
		return fmt.Errorf("%w: index %d out of range", apperr.ErrNoTrack, index)
	}

	s.cancelPendingAdvance()

	if err := s.transport.Play(ctx, track, index); err != nil {
		s.stopPoller()
		return err
	}
	s.startPoller()
	s.persistPlaylist()
	return nil
}

// handleTick runs on every poll tick. The engine position is read while
// holding the session lock, so a read can never interleave with a manual
// command: whichever acquires the lock first applies in full, and a tick
// arriving after a manual play sees the new track's position. This is the
// deterministic tie-break for the end-of-track/manual-skip race.
func (s *Session) handleTick(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A tick dispatched just before Close can reach here after the engine is
	// released; it must not touch it.
	if s.closed || !s.transport.State().IsPlaying {
		return
	}
	pos, err := s.engine.Position(ctx)
	if err != nil {
		return
	}

	// Duration can lag the load for files that are slow to demux; pick it up
	// here so end-of-track detection starts working.
	if s.transport.State().Duration == 0 {
		if d, derr := s.engine.Duration(ctx); derr == nil {
			s.transport.UpdateDuration(d)
		}
	}

	atEnd := s.transport.ApplyPoll(pos)
	if !atEnd || s.advancePending {
		return
	}
	// Latch so this track-end fires exactly once; a successful play clears
	// it along with resetting the position.
	s.advancePending = true
	s.autoAdvance(ctx)
}

// autoAdvance transitions to the mode-resolved next track after an
// end-of-track detection. Caller holds s.mu.
func (s *Session) autoAdvance(ctx context.Context) {
	cur := s.transport.State().CurrentIndex
	next, ok := s.resolver.Next(cur, s.playlist.Len())
	if !ok {
		// Linear mode exhausted: stop with the playhead held at the end.
		s.transport.HoldAtEnd()
		s.stopPoller()
		s.logger.Info("playlist finished")
		select {
		case s.finished <- struct{}{}:
		default:
		}
		return
	}

	if err := s.play(ctx, next); err != nil {
		// Stop rather than hunting for a playable track.
		s.logger.Error("auto-advance failed", "index", next, "err", err)
	}
}

// cancelPendingAdvance clears the end-of-track latch. Caller holds s.mu.
func (s *Session) cancelPendingAdvance() {
	s.advancePending = false
}

// startPoller launches the position poller if it is not already running.
// Caller holds s.mu.
func (s *Session) startPoller() {
	if s.pollCancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.pollCancel = cancel
	p := transport.NewPoller(s.pollInterval, s.handleTick)
	go p.Start(ctx)
}

// stopPoller cancels the poller if running. Caller holds s.mu.
func (s *Session) stopPoller() {
	if s.pollCancel != nil {
		s.pollCancel()
		s.pollCancel = nil
	}
}

func (s *Session) persistPlaylist() {
	if s.store == nil {
		return
	}
	if err := s.store.SavePlaylist(s.playlist.Tracks(), s.transport.State().CurrentIndex); err != nil {
		s.logger.Warn("persist playlist failed", "err", err)
	}
}

func (s *Session) persistHistory() {
	if s.store == nil {
		return
	}
	if err := s.store.SaveHistory(s.recorder.Entries()); err != nil {
		s.logger.Warn("persist history failed", "err", err)
	}
}

func (s *Session) persistMode(m mode.Mode) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveMode(m); err != nil {
		s.logger.Warn("persist mode failed", "err", err)
	}
}
