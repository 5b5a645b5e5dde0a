package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for common failure scenarios.
var (
	ErrEngineUnavailable = errors.New("audio engine unavailable")
	ErrPlaybackRejected  = errors.New("playback rejected")
	ErrSeekRejected      = errors.New("seek rejected")
	ErrVolumeRejected    = errors.New("volume change rejected")
	ErrEmptyPlaylist     = errors.New("playlist is empty")
	ErrNoTrack           = errors.New("no track loaded")
	ErrSessionClosed     = errors.New("session is closed")
	ErrConfigNotFound    = errors.New("config file not found")
	ErrInvalidConfig     = errors.New("invalid configuration")
)

// AriaError wraps an error with a user-friendly suggestion.
type AriaError struct {
	Err        error
	Suggestion string
}

func (e *AriaError) Error() string {
	return e.Err.Error()
}

func (e *AriaError) Unwrap() error {
	return e.Err
}

// WithSuggestion wraps an error with a helpful suggestion.
func WithSuggestion(err error, suggestion string) error {
	return &AriaError{
		Err:        err,
		Suggestion: suggestion,
	}
}

// GetSuggestion returns a suggestion for the given error.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	// Check if it's already an AriaError with suggestion
	var ariaErr *AriaError
	if errors.As(err, &ariaErr) && ariaErr.Suggestion != "" {
		return ariaErr.Suggestion
	}

	errStr := strings.ToLower(err.Error())

	// Engine errors
	if errors.Is(err, ErrEngineUnavailable) || strings.Contains(errStr, "engine unavailable") ||
		strings.Contains(errStr, "failed to initialize") {
		return "Check that libmpv is installed and the audio device is available"
	}

	if errors.Is(err, ErrPlaybackRejected) || strings.Contains(errStr, "no such file") ||
		strings.Contains(errStr, "unsupported") {
		return "Check that the file exists and is a supported audio format"
	}

	if errors.Is(err, ErrSeekRejected) {
		return "The track may not be seekable; try restarting it"
	}

	// Playlist errors
	if errors.Is(err, ErrEmptyPlaylist) || errors.Is(err, ErrNoTrack) {
		return "Load a playlist with 'aria play <files...>' first"
	}

	// Config errors
	if errors.Is(err, ErrConfigNotFound) || errors.Is(err, ErrInvalidConfig) ||
		strings.Contains(errStr, "config") {
		return "Run 'aria config init' to create a default configuration"
	}

	return ""
}

// Format returns a formatted error message with suggestion if available.
func Format(err error) string {
	if err == nil {
		return ""
	}

	suggestion := GetSuggestion(err)
	if suggestion != "" {
		return fmt.Sprintf("Error: %s\n\nSuggestion: %s", err.Error(), suggestion)
	}

	return fmt.Sprintf("Error: %s", err.Error())
}
