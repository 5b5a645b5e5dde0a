package config

// Config is the root configuration structure.
type Config struct {
	Defaults DefaultsConfig `toml:"defaults"`
	Poll     PollConfig     `toml:"poll"`
	History  HistoryConfig  `toml:"history"`
	Store    StoreConfig    `toml:"store"`
	Log      LogConfig      `toml:"log"`
}

// DefaultsConfig holds default playback settings.
type DefaultsConfig struct {
	Volume int    `toml:"volume"`
	Mode   string `toml:"mode"`
}

// PollConfig holds position polling and reconciliation timing, all in
// milliseconds.
type PollConfig struct {
	Interval   int `toml:"interval_ms"`
	EndEpsilon int `toml:"end_epsilon_ms"`
	SeekSettle int `toml:"seek_settle_ms"`
}

// HistoryConfig holds playback history settings.
type HistoryConfig struct {
	Limit int `toml:"limit"`
}

// StoreConfig holds persistence settings.
type StoreConfig struct {
	Path string `toml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}
