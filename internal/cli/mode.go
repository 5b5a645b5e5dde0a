package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/corvid/aria/internal/mode"
)

var modeCmd = &cobra.Command{
	Use:   "mode [value]",
	Short: "Show or set the playback mode",
	Long: `Without arguments, shows the saved playback mode. With an argument,
saves a new one for the next session.

Valid modes: linear, repeat-all, repeat-one, shuffle`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)
}

func runMode(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if len(args) == 0 {
		state, err := st.Load()
		if err != nil {
			return fmt.Errorf("failed to load saved state: %w", err)
		}
		if JSONOutput() {
			return json.NewEncoder(os.Stdout).Encode(map[string]string{"mode": state.Mode.String()})
		}
		fmt.Println(state.Mode)
		return nil
	}

	m := mode.Parse(args[0])
	if m == mode.Linear && args[0] != "linear" {
		return fmt.Errorf("invalid mode: %s (must be linear, repeat-all, repeat-one, or shuffle)", args[0])
	}

	if err := st.SaveMode(m); err != nil {
		return fmt.Errorf("failed to save mode: %w", err)
	}

	if JSONOutput() {
		return json.NewEncoder(os.Stdout).Encode(map[string]string{"mode": m.String()})
	}
	fmt.Printf("Mode: %s\n", m)
	return nil
}
