package audioplayer

import (
	"errors"
	"fmt"
)

// PlayerActivity identifies the playback state reported by the engine.
// The engine owns the authoritative state; the platform player only
// observes transitions and renders the latest value.
type PlayerActivity int

const (
	// ActivityIdle means audio playback has not yet begun.
	ActivityIdle PlayerActivity = iota

	// ActivityPlaying means audio is currently rendering.
	ActivityPlaying

	// ActivityStopped means playback was halted by a directive or error.
	ActivityStopped

	// ActivityPaused means playback is suspended and resumable.
	ActivityPaused

	// ActivityBufferUnderrun means playback stalled waiting for buffered data.
	ActivityBufferUnderrun

	// ActivityFinished means playback reached the natural end of the media.
	ActivityFinished
)

// TimeUnknown is the sentinel returned when a playback position or
// duration cannot be determined. It is a valid domain value, not an error.
const TimeUnknown int64 = -1

// ErrUnknownActivity is returned when a textual token does not name a
// known player activity.
var ErrUnknownActivity = errors.New("unknown player activity")

// String returns the stable diagnostic token for the activity. The tokens
// are part of the contract with engine-side collaborators and must not
// change.
func (a PlayerActivity) String() string {
	switch a {
	case ActivityIdle:
		return "IDLE"
	case ActivityPlaying:
		return "PLAYING"
	case ActivityStopped:
		return "STOPPED"
	case ActivityPaused:
		return "PAUSED"
	case ActivityBufferUnderrun:
		return "BUFFER_UNDERRUN"
	case ActivityFinished:
		return "FINISHED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(a))
	}
}

// IsValid reports whether the value belongs to the enumerated activity set.
// Values outside the set can appear when engine-side and platform-side
// enumerations drift; callers reject them rather than coercing.
func (a PlayerActivity) IsValid() bool {
	return a >= ActivityIdle && a <= ActivityFinished
}

// ParsePlayerActivity maps a diagnostic token back to its activity value.
func ParsePlayerActivity(token string) (PlayerActivity, error) {
	switch token {
	case "IDLE":
		return ActivityIdle, nil
	case "PLAYING":
		return ActivityPlaying, nil
	case "STOPPED":
		return ActivityStopped, nil
	case "PAUSED":
		return ActivityPaused, nil
	case "BUFFER_UNDERRUN":
		return ActivityBufferUnderrun, nil
	case "FINISHED":
		return ActivityFinished, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivity, token)
	}
}

// Activities returns all values of the enumerated set in declaration order.
func Activities() []PlayerActivity {
	return []PlayerActivity{
		ActivityIdle,
		ActivityPlaying,
		ActivityStopped,
		ActivityPaused,
		ActivityBufferUnderrun,
		ActivityFinished,
	}
}
