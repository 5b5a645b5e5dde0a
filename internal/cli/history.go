package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

var historyLimitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show playback history",
	Long:  `Shows recently played tracks, most recent first.`,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear playback history",
	RunE:  runHistoryClear,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimitFlag, "limit", "n", 0, "show at most N entries")
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	state, err := st.Load()
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	entries := state.History
	if historyLimitFlag > 0 && len(entries) > historyLimitFlag {
		entries = entries[:historyLimitFlag]
	}

	if JSONOutput() {
		output := make([]map[string]interface{}, 0, len(entries))
		for _, e := range entries {
			output = append(output, map[string]interface{}{
				"title":          e.Track.Title(),
				"path":           e.Track.Path,
				"play_count":     e.PlayCount,
				"last_played_at": e.LastPlayedAt,
			})
		}
		return json.NewEncoder(os.Stdout).Encode(output)
	}

	if len(entries) == 0 {
		fmt.Println("No playback history")
		return nil
	}

	table := NewTable("#", "TITLE", "PLAYS", "LAST PLAYED")
	for i, e := range entries {
		table.Row(
			strconv.Itoa(i+1),
			TruncateString(e.Track.Title(), 50),
			strconv.Itoa(e.PlayCount),
			e.LastPlayedAt.Local().Format("2006-01-02 15:04"),
		)
	}
	table.Flush()
	return nil
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.SaveHistory(nil); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"status": "cleared"})
	}
	fmt.Println("History cleared")
	return nil
}
