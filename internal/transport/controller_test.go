package transport

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/corvid/aria/internal/core"
	apperr "github.com/corvid/aria/internal/errors"
)

// fakeEngine implements core.Engine for tests.
type fakeEngine struct {
	mu sync.Mutex

	playErr   error
	pauseErr  error
	resumeErr error
	seekErr   error
	volErr    error
	posErr    error

	duration time.Duration
	position time.Duration

	loaded   string
	seekedTo time.Duration
	volume   float64
	paused   bool
	stopped  bool
}

func (f *fakeEngine) LoadAndPlay(ctx context.Context, path string) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.playErr != nil {
		return 0, f.playErr
	}
	f.loaded = path
	f.paused = false
	f.position = 0
	return f.duration, nil
}

func (f *fakeEngine) Pause(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pauseErr != nil {
		return f.pauseErr
	}
	f.paused = true
	return nil
}

func (f *fakeEngine) Resume(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.resumeErr != nil {
		return f.resumeErr
	}
	f.paused = false
	return nil
}

func (f *fakeEngine) Stop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
	return nil
}

func (f *fakeEngine) SeekTo(ctx context.Context, pos time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.seekErr != nil {
		return f.seekErr
	}
	f.seekedTo = pos
	f.position = pos
	return nil
}

func (f *fakeEngine) Position(ctx context.Context) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.posErr != nil {
		return 0, f.posErr
	}
	return f.position, nil
}

func (f *fakeEngine) Duration(ctx context.Context) (time.Duration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, nil
}

func (f *fakeEngine) SetVolume(ctx context.Context, fraction float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.volErr != nil {
		return f.volErr
	}
	f.volume = fraction
	return nil
}

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) setPosition(pos time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.position = pos
}

func (f *fakeEngine) lastSeek() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seekedTo
}

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

type recordedTracks struct {
	tracks []core.Track
}

func (r *recordedTracks) Record(t core.Track) {
	r.tracks = append(r.tracks, t)
}

func TestPlaySetsTransportState(t *testing.T) {
	eng := &fakeEngine{duration: 180 * time.Second}
	rec := &recordedTracks{}
	c := New(eng, testLogger(), WithRecorder(rec))
	c.RestoreVolume(70)

	track := core.NewTrack("/music/a.mp3")
	if err := c.Play(context.Background(), track, 2); err != nil {
		t.Fatalf("Play error: %v", err)
	}

	st := c.State()
	if st.CurrentIndex != 2 {
		t.Errorf("CurrentIndex = %d, want 2", st.CurrentIndex)
	}
	if !st.IsPlaying {
		t.Error("IsPlaying = false, want true")
	}
	if st.Position != 0 {
		t.Errorf("Position = %v, want 0", st.Position)
	}
	if st.Duration != 180*time.Second {
		t.Errorf("Duration = %v, want 180s", st.Duration)
	}
	if eng.loaded != "/music/a.mp3" {
		t.Errorf("engine loaded %q, want /music/a.mp3", eng.loaded)
	}
	if eng.volume != 0.7 {
		t.Errorf("engine volume = %v, want 0.7", eng.volume)
	}
	if len(rec.tracks) != 1 || rec.tracks[0].Path != "/music/a.mp3" {
		t.Errorf("recorded tracks = %v, want one entry for a.mp3", rec.tracks)
	}
}

func TestPlayFallsBackToMetadataDuration(t *testing.T) {
	eng := &fakeEngine{duration: 0}
	c := New(eng, testLogger())

	track := core.NewTrack("/music/a.mp3")
	track.Meta = &core.TrackMetadata{Duration: 90 * time.Second}

	if err := c.Play(context.Background(), track, 0); err != nil {
		t.Fatalf("Play error: %v", err)
	}
	if got := c.State().Duration; got != 90*time.Second {
		t.Errorf("Duration = %v, want 90s", got)
	}
}

func TestPlayFailureStopsPlayback(t *testing.T) {
	eng := &fakeEngine{playErr: errors.New("no such file")}
	rec := &recordedTracks{}
	c := New(eng, testLogger(), WithRecorder(rec))

	err := c.Play(context.Background(), core.NewTrack("/gone.mp3"), 0)
	if err == nil {
		t.Fatal("Play returned nil error")
	}
	if !errors.Is(err, apperr.ErrPlaybackRejected) {
		t.Errorf("error = %v, want ErrPlaybackRejected", err)
	}
	if c.State().IsPlaying {
		t.Error("IsPlaying = true after failed play")
	}
	if len(rec.tracks) != 0 {
		t.Errorf("failed play was recorded: %v", rec.tracks)
	}
}

func TestTogglePlayNoTrackIsNoop(t *testing.T) {
	eng := &fakeEngine{}
	c := New(eng, testLogger())

	if err := c.TogglePlay(context.Background()); err != nil {
		t.Fatalf("TogglePlay error: %v", err)
	}
	if eng.paused {
		t.Error("engine received pause with no track loaded")
	}
}

func TestTogglePlayFlipsAfterAck(t *testing.T) {
	eng := &fakeEngine{duration: time.Minute}
	c := New(eng, testLogger())
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.TogglePlay(ctx); err != nil {
		t.Fatalf("TogglePlay error: %v", err)
	}
	if c.State().IsPlaying {
		t.Error("IsPlaying = true after pause")
	}
	if !eng.paused {
		t.Error("engine not paused")
	}

	if err := c.TogglePlay(ctx); err != nil {
		t.Fatalf("TogglePlay error: %v", err)
	}
	if !c.State().IsPlaying {
		t.Error("IsPlaying = false after resume")
	}
}

func TestTogglePlayFailureDowngradesToStopped(t *testing.T) {
	eng := &fakeEngine{duration: time.Minute, pauseErr: errors.New("ipc closed")}
	c := New(eng, testLogger())
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	err := c.TogglePlay(ctx)
	if !errors.Is(err, apperr.ErrEngineUnavailable) {
		t.Errorf("error = %v, want ErrEngineUnavailable", err)
	}
	if c.State().IsPlaying {
		t.Error("IsPlaying = true after failed pause")
	}
}

func TestSeekClampsBeforeSendingToEngine(t *testing.T) {
	eng := &fakeEngine{duration: 200 * time.Second}
	c := New(eng, testLogger(), WithSettleDelay(time.Millisecond))
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}

	if err := c.Seek(ctx, -5*time.Second); err != nil {
		t.Fatalf("Seek error: %v", err)
	}
	if got := eng.lastSeek(); got != 0 {
		t.Errorf("engine received seek to %v, want 0", got)
	}
	c.Settle()
	if got := c.State().Position; got != 0 {
		t.Errorf("Position = %v, want 0", got)
	}

	if err := c.Seek(ctx, 500*time.Second); err != nil {
		t.Fatalf("Seek error: %v", err)
	}
	if got := eng.lastSeek(); got != 200*time.Second {
		t.Errorf("engine received seek to %v, want 200s", got)
	}
	c.Settle()
}

func TestSeekOptimisticThenAuthoritative(t *testing.T) {
	eng := &fakeEngine{duration: 200 * time.Second}
	c := New(eng, testLogger(), WithSettleDelay(time.Millisecond))
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}

	// The engine snaps the seek to a different position than requested.
	if err := c.Seek(ctx, 60*time.Second); err != nil {
		t.Fatal(err)
	}
	if got := c.State().Position; got != 60*time.Second {
		t.Errorf("optimistic Position = %v, want 60s", got)
	}

	eng.setPosition(58 * time.Second)
	c.Settle()
	if got := c.State().Position; got != 58*time.Second {
		t.Errorf("post-settle Position = %v, want authoritative 58s", got)
	}
}

func TestSeekFailureStillRereadsPosition(t *testing.T) {
	eng := &fakeEngine{duration: 200 * time.Second, seekErr: errors.New("busy")}
	c := New(eng, testLogger(), WithSettleDelay(time.Millisecond))
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	eng.setPosition(33 * time.Second)

	err := c.Seek(ctx, 90*time.Second)
	if !errors.Is(err, apperr.ErrSeekRejected) {
		t.Errorf("error = %v, want ErrSeekRejected", err)
	}

	c.Settle()
	if got := c.State().Position; got != 33*time.Second {
		t.Errorf("Position = %v, want authoritative 33s after failed seek", got)
	}
}

func TestStaleReconciliationDiscarded(t *testing.T) {
	eng := &fakeEngine{duration: 200 * time.Second}
	c := New(eng, testLogger(), WithSettleDelay(20*time.Millisecond))
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Seek(ctx, 60*time.Second); err != nil {
		t.Fatal(err)
	}

	// A new play supersedes the pending seek re-read before it settles.
	if err := c.Play(ctx, core.NewTrack("/b.mp3"), 1); err != nil {
		t.Fatal(err)
	}
	eng.setPosition(60 * time.Second)

	c.Settle()
	if got := c.State().Position; got != 0 {
		t.Errorf("Position = %v, want 0 (stale re-read must not apply)", got)
	}
}

func TestSkipByClampsRelativeTarget(t *testing.T) {
	eng := &fakeEngine{duration: 200 * time.Second}
	c := New(eng, testLogger(), WithSettleDelay(time.Millisecond))
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.SkipBy(ctx, -10*time.Second); err != nil {
		t.Fatal(err)
	}
	if got := eng.lastSeek(); got != 0 {
		t.Errorf("engine received seek to %v, want 0", got)
	}
	c.Settle()
}

func TestSetVolumeClampsAndKeepsOptimisticOnFailure(t *testing.T) {
	eng := &fakeEngine{}
	c := New(eng, testLogger())
	ctx := context.Background()

	if err := c.SetVolume(ctx, 140); err != nil {
		t.Fatal(err)
	}
	if got := c.State().Volume; got != 100 {
		t.Errorf("Volume = %d, want 100", got)
	}
	if eng.volume != 1.0 {
		t.Errorf("engine fraction = %v, want 1.0", eng.volume)
	}

	eng.volErr = errors.New("refused")
	err := c.SetVolume(ctx, 30)
	if !errors.Is(err, apperr.ErrVolumeRejected) {
		t.Errorf("error = %v, want ErrVolumeRejected", err)
	}
	// Last-known-good UI value: the optimistic write survives.
	if got := c.State().Volume; got != 30 {
		t.Errorf("Volume = %d, want 30 after rejected change", got)
	}
}

func TestApplyPollDetectsTrackEnd(t *testing.T) {
	eng := &fakeEngine{duration: 180 * time.Second}
	c := New(eng, testLogger())
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}

	if atEnd := c.ApplyPoll(90 * time.Second); atEnd {
		t.Error("ApplyPoll(90s) reported end of a 180s track")
	}
	if got := c.State().Position; got != 90*time.Second {
		t.Errorf("Position = %v, want 90s", got)
	}

	if atEnd := c.ApplyPoll(179*time.Second + 950*time.Millisecond); !atEnd {
		t.Error("ApplyPoll just inside epsilon did not report end")
	}
}

func TestApplyPollIgnoredWhenStopped(t *testing.T) {
	eng := &fakeEngine{duration: 180 * time.Second}
	c := New(eng, testLogger())

	if atEnd := c.ApplyPoll(200 * time.Second); atEnd {
		t.Error("ApplyPoll reported end with nothing playing")
	}
	if got := c.State().Position; got != 0 {
		t.Errorf("Position = %v, want 0", got)
	}
}

func TestHoldAtEnd(t *testing.T) {
	eng := &fakeEngine{duration: 180 * time.Second}
	c := New(eng, testLogger())
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	c.HoldAtEnd()

	st := c.State()
	if st.IsPlaying {
		t.Error("IsPlaying = true after HoldAtEnd")
	}
	if st.Position != st.Duration {
		t.Errorf("Position = %v, want duration %v", st.Position, st.Duration)
	}
	if st.CurrentIndex != 0 {
		t.Errorf("CurrentIndex = %d, want 0 (unchanged)", st.CurrentIndex)
	}
}

func TestStopResetsState(t *testing.T) {
	eng := &fakeEngine{duration: 180 * time.Second}
	c := New(eng, testLogger())
	ctx := context.Background()

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	if err := c.Stop(ctx); err != nil {
		t.Fatalf("Stop error: %v", err)
	}

	st := c.State()
	if st.HasTrack() {
		t.Errorf("CurrentIndex = %d, want NoTrack", st.CurrentIndex)
	}
	if st.IsPlaying || st.Position != 0 || st.Duration != 0 {
		t.Errorf("state not reset: %+v", st)
	}
	if !eng.stopped {
		t.Error("engine did not receive stop")
	}
}

func TestUpdateDuration(t *testing.T) {
	eng := &fakeEngine{}
	c := New(eng, testLogger())
	ctx := context.Background()

	// No track loaded: nothing to attach a duration to.
	c.UpdateDuration(120 * time.Second)
	if got := c.State().Duration; got != 0 {
		t.Errorf("Duration with no track = %v, want 0", got)
	}

	if err := c.Play(ctx, core.NewTrack("/a.mp3"), 0); err != nil {
		t.Fatal(err)
	}
	if got := c.State().Duration; got != 0 {
		t.Fatalf("Duration at load = %v, want 0 (engine reported none)", got)
	}

	c.UpdateDuration(0)
	c.UpdateDuration(-time.Second)
	if got := c.State().Duration; got != 0 {
		t.Errorf("Duration after non-positive updates = %v, want 0", got)
	}

	c.UpdateDuration(120 * time.Second)
	if got := c.State().Duration; got != 120*time.Second {
		t.Errorf("Duration = %v, want 120s", got)
	}
	if !c.ApplyPoll(120 * time.Second) {
		t.Error("ApplyPoll at recovered duration did not report track end")
	}
}
