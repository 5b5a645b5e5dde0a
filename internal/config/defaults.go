package config

import (
	"os"
	"path/filepath"
)

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Volume: 80,
			Mode:   "linear",
		},
		Poll: PollConfig{
			Interval:   100,
			EndEpsilon: 100,
			SeekSettle: 150,
		},
		History: HistoryConfig{
			Limit: 100,
		},
		Store: StoreConfig{
			Path: defaultStorePath(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Defaults
	if c.Defaults.Volume == 0 {
		c.Defaults.Volume = d.Defaults.Volume
	}
	if c.Defaults.Mode == "" {
		c.Defaults.Mode = d.Defaults.Mode
	}

	// Poll
	if c.Poll.Interval == 0 {
		c.Poll.Interval = d.Poll.Interval
	}
	if c.Poll.EndEpsilon == 0 {
		c.Poll.EndEpsilon = d.Poll.EndEpsilon
	}
	if c.Poll.SeekSettle == 0 {
		c.Poll.SeekSettle = d.Poll.SeekSettle
	}

	// History
	if c.History.Limit == 0 {
		c.History.Limit = d.History.Limit
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = d.Store.Path
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

// defaultStorePath returns the default location for the state database.
func defaultStorePath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "aria.db"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "aria", "aria.db")
}
