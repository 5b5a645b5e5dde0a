package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corvid/aria/internal/core"
	apperr "github.com/corvid/aria/internal/errors"
	"github.com/corvid/aria/internal/session"
	"github.com/corvid/aria/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the saved player state",
	Long:  `Shows the playlist, current track, volume and mode of the last session.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// openStore opens the state database for the read-only commands.
func openStore() (*store.SQLite, error) {
	if cfg.Store.Path == "" {
		return nil, fmt.Errorf("%w: no store path configured", apperr.ErrConfigNotFound)
	}
	return store.Open(cfg.Store.Path)
}

func runStatus(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	state, err := st.Load()
	if err != nil {
		return fmt.Errorf("failed to load saved state: %w", err)
	}

	if JSONOutput() {
		return outputStatusJSON(state)
	}
	return outputStatusText(state)
}

func outputStatusJSON(state *session.PersistedState) error {
	item := map[string]interface{}{
		"tracks": len(state.Tracks),
		"volume": state.Volume,
		"mode":   state.Mode.String(),
	}

	if state.CurrentIndex != core.NoTrack && state.CurrentIndex < len(state.Tracks) {
		track := state.Tracks[state.CurrentIndex]
		item["current"] = map[string]interface{}{
			"index": state.CurrentIndex,
			"title": track.Title(),
			"path":  track.Path,
		}
	}

	return json.NewEncoder(os.Stdout).Encode(item)
}

func outputStatusText(state *session.PersistedState) error {
	if len(state.Tracks) == 0 {
		fmt.Println("No saved playlist")
		return nil
	}

	fmt.Printf("Playlist: %d tracks\n", len(state.Tracks))
	fmt.Printf("Mode:     %s\n", state.Mode)
	fmt.Printf("Volume:   %d%%\n", state.Volume)

	if state.CurrentIndex != core.NoTrack && state.CurrentIndex < len(state.Tracks) {
		track := state.Tracks[state.CurrentIndex]
		fmt.Printf("Current:  [%d] %s\n", state.CurrentIndex+1, track.Title())
		if track.Meta != nil && track.Meta.Artist != "" {
			fmt.Printf("          %s — %s\n", track.Meta.Artist, track.Meta.Album)
		}
		if d := track.Duration(); d > 0 {
			fmt.Printf("          %s\n", FormatDuration(d))
		}
	}

	return nil
}
