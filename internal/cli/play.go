package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/corvid/aria/internal/core"
	"github.com/corvid/aria/internal/engine/mpv"
	"github.com/corvid/aria/internal/mode"
	"github.com/corvid/aria/internal/session"
	"github.com/corvid/aria/internal/store"
	"github.com/corvid/aria/internal/transport"
	"github.com/corvid/aria/internal/watch"
)

var (
	playShuffle   bool
	playMode      string
	playVolume    int
	playResume    bool
	playNoEmoji   bool
	playTimestamp bool
	playFormat    string
)

// audioExtensions are the file types picked up when a directory is given.
var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".wav":  true,
	".m4a":  true,
	".aac":  true,
}

var playCmd = &cobra.Command{
	Use:   "play [files or directories...]",
	Short: "Play audio files",
	Long: `Load the given files into the playlist and play them, printing playback
events until the playlist finishes or the process is interrupted.

Examples:
  aria play song.mp3                # Play a single file
  aria play ~/Music/album/          # Play a directory
  aria play --shuffle ~/Music/      # Shuffle a directory
  aria play --mode repeat-all a.mp3 b.mp3
  aria play --resume                # Resume the saved playlist`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().BoolVar(&playShuffle, "shuffle", false, "shuffle playback")
	playCmd.Flags().StringVarP(&playMode, "mode", "m", "", "playback mode (linear, repeat-all, repeat-one, shuffle)")
	playCmd.Flags().IntVar(&playVolume, "volume", -1, "initial volume (0-100)")
	playCmd.Flags().BoolVar(&playResume, "resume", false, "resume the saved playlist instead of loading files")
	playCmd.Flags().BoolVar(&playNoEmoji, "no-emoji", false, "disable emoji output")
	playCmd.Flags().BoolVarP(&playTimestamp, "timestamp", "t", false, "show timestamps")
	playCmd.Flags().StringVarP(&playFormat, "format", "f", "", "custom event format template")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && !playResume {
		return fmt.Errorf("no files given (use --resume to replay the saved playlist)")
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sess, err := openSession()
	if err != nil {
		return err
	}
	defer func() {
		if err := sess.Close(); err != nil {
			logger.Warn("session close failed", "err", err)
		}
	}()

	if err := sess.Restore(); err != nil {
		logger.Warn("restore saved state failed", "err", err)
	}

	if len(args) > 0 {
		tracks, err := collectTracks(args)
		if err != nil {
			return err
		}
		if err := sess.LoadPlaylist(ctx, tracks); err != nil {
			return err
		}
	}

	applyPlaybackFlags(ctx, sess)

	// A resumed playlist picks up at the track that was current when the
	// previous session saved state; a fresh load starts at the top.
	start := 0
	if playResume && len(args) == 0 {
		if idx := sess.RestoredIndex(); idx != core.NoTrack {
			start = idx
		}
	}
	if err := sess.Play(ctx, start); err != nil {
		return fmt.Errorf("failed to start playback: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return followPlayback(ctx, sess)
}

// openSession builds the engine, store and session from the loaded config.
func openSession() (*session.Session, error) {
	engine, err := mpv.New()
	if err != nil {
		return nil, err
	}

	var st session.Store = store.Nop{}
	if cfg.Store.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			logger.Warn("state directory unavailable, persistence disabled", "err", err)
		} else if db, err := store.Open(cfg.Store.Path); err != nil {
			logger.Warn("state database unavailable, persistence disabled", "err", err)
		} else {
			st = db
		}
	}

	return session.New(engine,
		session.WithStore(st),
		session.WithLogger(logger),
		session.WithPollInterval(time.Duration(cfg.Poll.Interval)*time.Millisecond),
		session.WithHistoryLimit(cfg.History.Limit),
		session.WithTransportOptions(
			transport.WithSettleDelay(time.Duration(cfg.Poll.SeekSettle)*time.Millisecond),
			transport.WithEndEpsilon(time.Duration(cfg.Poll.EndEpsilon)*time.Millisecond),
		),
	), nil
}

// applyPlaybackFlags layers command-line overrides over restored/config state.
func applyPlaybackFlags(ctx context.Context, sess *session.Session) {
	switch {
	case playShuffle:
		sess.SetPlaybackMode(mode.Shuffle)
	case playMode != "":
		sess.SetPlaybackMode(mode.Parse(playMode))
	case sess.Snapshot().Mode == mode.Linear && cfg.Defaults.Mode != "":
		sess.SetPlaybackMode(mode.Parse(cfg.Defaults.Mode))
	}

	volume := playVolume
	if volume < 0 && sess.Snapshot().Transport.Volume == 0 {
		volume = cfg.Defaults.Volume
	}
	if volume >= 0 {
		if err := sess.SetVolume(ctx, volume); err != nil {
			logger.Warn("set volume failed", "volume", volume, "err", err)
		}
	}
}

// followPlayback prints playback events until the playlist finishes or the
// context is cancelled.
func followPlayback(ctx context.Context, sess *session.Session) error {
	formatter := watch.NewFormatter(
		watch.WithEmoji(!playNoEmoji),
		watch.WithTimestamp(playTimestamp),
		watch.WithTemplate(playFormat),
	)

	interval := time.Duration(cfg.Poll.Interval) * time.Millisecond
	watcher := watch.NewWatcher(sess, interval)

	errCh := make(chan error, 1)
	go func() {
		errCh <- watcher.Start(ctx)
	}()

	// Announce the first track; the watcher only reports changes after it.
	if snap := sess.Snapshot(); snap.Transport.HasTrack() {
		fmt.Println(formatter.Format(watch.Event{
			Type:      watch.EventTrackChange,
			Timestamp: time.Now(),
			Current:   &snap,
		}))
	}

	for {
		select {
		case event, ok := <-watcher.Events():
			if !ok {
				return nil
			}
			fmt.Println(formatter.Format(event))

		case <-sess.Finished():
			watcher.Stop()
			if !JSONOutput() {
				fmt.Println("Playlist finished")
			}
			return nil

		case err := <-errCh:
			if err == context.Canceled {
				return nil
			}
			return err
		}
	}
}

// collectTracks expands the given paths into a flat track list. Directories
// are walked one level deep in name order.
func collectTracks(paths []string) ([]core.Track, error) {
	var tracks []core.Track

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", p, err)
		}

		if !info.IsDir() {
			tracks = append(tracks, core.NewTrack(p))
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", p, err)
		}
		var names []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			if audioExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			tracks = append(tracks, core.NewTrack(filepath.Join(p, name)))
		}
	}

	if len(tracks) == 0 {
		return nil, fmt.Errorf("no audio files found")
	}
	return tracks, nil
}
