package directive

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"voxbridge.dev/internal/audioplayer"
)

// Known directive names issued by the engine's audio-playback channel.
const (
	NamePlay             = "Play"
	NameStop             = "Stop"
	NamePause            = "Pause"
	NameResume           = "Resume"
	NameBufferUnderrun   = "BufferUnderrun"
	NameBufferRefilled   = "BufferRefilled"
	NamePlaybackFinished = "PlaybackFinished"
)

// Parser errors
var (
	ErrEmptyData        = errors.New("empty directive data")
	ErrUnknownDirective = errors.New("unknown directive name")
)

// Event represents a parsed audio-playback directive from the engine.
type Event struct {
	// Base fields (always present)
	DirectiveName string `json:"directive_name"`
	SessionID     string `json:"session_id"`

	// Optional fields (directive-specific)
	DialogRequestID *string `json:"dialog_request_id,omitempty"`
	MediaURL        *string `json:"media_url,omitempty"`
	Token           *string `json:"token,omitempty"`
	OffsetMs        *int64  `json:"offset_ms,omitempty"`
	DurationMs      *int64  `json:"duration_ms,omitempty"`
}

// Parser parses engine directive JSON into structured events
type Parser struct{}

// NewParser creates a new directive parser
func NewParser() *Parser {
	slog.Debug("creating new directive parser")
	return &Parser{}
}

// Parse parses directive JSON data into an Event. The directive name is
// validated against the closed set; anything else is rejected rather than
// silently coerced.
func (p *Parser) Parse(data []byte) (*Event, error) {
	if len(data) == 0 {
		slog.Error("parse failed: empty data")
		return nil, ErrEmptyData
	}

	slog.Debug("parsing directive JSON", "size_bytes", len(data))

	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("failed to unmarshal directive JSON",
			"error", err,
			"data_preview", string(data[:min(100, len(data))]))
		return nil, fmt.Errorf("failed to parse directive JSON: %w", err)
	}

	if event.SessionID == "" {
		err := fmt.Errorf("missing required field: session_id")
		slog.Error("validation failed", "error", err)
		return nil, err
	}

	if event.DirectiveName == "" {
		err := fmt.Errorf("missing required field: directive_name")
		slog.Error("validation failed", "error", err)
		return nil, err
	}

	if _, ok := event.Activity(); !ok {
		slog.Error("validation failed: directive name outside known set",
			"directive_name", event.DirectiveName)
		return nil, fmt.Errorf("%w: %q", ErrUnknownDirective, event.DirectiveName)
	}

	slog.Info("directive parsed successfully",
		"directive_name", event.DirectiveName,
		"session_id", event.SessionID,
		"has_media_url", event.MediaURL != nil)

	return &event, nil
}

// Activity maps the directive to the player activity it transitions the
// engine into. The second return value is false for unrecognized names.
func (e *Event) Activity() (audioplayer.PlayerActivity, bool) {
	switch e.DirectiveName {
	case NamePlay, NameResume, NameBufferRefilled:
		return audioplayer.ActivityPlaying, true
	case NameStop:
		return audioplayer.ActivityStopped, true
	case NamePause:
		return audioplayer.ActivityPaused, true
	case NameBufferUnderrun:
		return audioplayer.ActivityBufferUnderrun, true
	case NamePlaybackFinished:
		return audioplayer.ActivityFinished, true
	default:
		return 0, false
	}
}

// LoadsMedia reports whether the directive begins playback of a new media
// item, priming the engine transport with offset and duration.
func (e *Event) LoadsMedia() bool {
	return e.DirectiveName == NamePlay
}

// Offset returns the requested starting offset in milliseconds, defaulting
// to zero when the directive carries none.
func (e *Event) Offset() int64 {
	if e.OffsetMs == nil {
		return 0
	}
	return *e.OffsetMs
}

// Duration returns the declared media duration in milliseconds, or
// TimeUnknown when the directive carries none.
func (e *Event) Duration() int64 {
	if e.DurationMs == nil {
		return audioplayer.TimeUnknown
	}
	return *e.DurationMs
}
