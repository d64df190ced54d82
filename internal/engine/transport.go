package engine

import (
	"log/slog"
	"sync"
	"time"

	"voxbridge.dev/internal/audioplayer"
)

// TransportState is the engine-side transport-state authority. It owns the
// position and duration of the most recent media item and serves them to the
// platform player through the audioplayer.EngineDelegate contract.
//
// Position derives from a monotonic clock anchor while playing and a frozen
// offset otherwise: PAUSED, BUFFER_UNDERRUN and STOPPED freeze the offset at
// the moment of the transition, FINISHED pins it to the duration when the
// duration is known, and IDLE resets the transport entirely.
type TransportState struct {
	mu       sync.Mutex
	loaded   bool
	playing  bool
	offsetMs int64
	duration int64
	anchor   time.Time
	ref      *audioplayer.DelegateRef

	now func() time.Time // injectable for tests
}

var _ audioplayer.EngineDelegate = (*TransportState)(nil)

// NewTransportState creates a transport authority with no media loaded.
func NewTransportState() *TransportState {
	t := &TransportState{
		duration: audioplayer.TimeUnknown,
		now:      time.Now,
	}
	t.ref = audioplayer.NewDelegateRef(t)
	slog.Debug("transport state created")
	return t
}

// DelegateRef returns the non-owning handle a platform player resolves on
// every query. The handle stops resolving once Close is called.
func (t *TransportState) DelegateRef() *audioplayer.DelegateRef {
	return t.ref
}

// LoadMedia primes the transport for a new media item starting at offsetMs.
// durationMs may be audioplayer.TimeUnknown for media of unknown length.
func (t *TransportState) LoadMedia(offsetMs, durationMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if offsetMs < 0 {
		offsetMs = 0
	}

	t.loaded = true
	t.playing = false
	t.offsetMs = offsetMs
	t.duration = durationMs

	slog.Debug("media loaded into transport",
		"offset_ms", offsetMs,
		"duration_ms", durationMs)
}

// ApplyActivity moves the transport clock according to the activity the
// engine transitioned into. Any sequence of activities is accepted; repeated
// values are idempotent.
func (t *TransportState) ApplyActivity(activity audioplayer.PlayerActivity) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch activity {
	case audioplayer.ActivityPlaying:
		if !t.playing {
			t.anchor = t.now()
			t.playing = true
		}
	case audioplayer.ActivityPaused, audioplayer.ActivityBufferUnderrun, audioplayer.ActivityStopped:
		t.freezeLocked()
	case audioplayer.ActivityFinished:
		t.freezeLocked()
		if t.duration != audioplayer.TimeUnknown {
			t.offsetMs = t.duration
		}
	case audioplayer.ActivityIdle:
		t.loaded = false
		t.playing = false
		t.offsetMs = 0
		t.duration = audioplayer.TimeUnknown
	}

	slog.Debug("transport activity applied",
		"activity", activity.String(),
		"offset_ms", t.offsetMs,
		"playing", t.playing)
}

// freezeLocked folds elapsed play time into the stored offset. Callers hold mu.
func (t *TransportState) freezeLocked() {
	if t.playing {
		t.offsetMs += t.now().Sub(t.anchor).Milliseconds()
		t.playing = false
	}
}

// FetchPlayerPosition implements audioplayer.EngineDelegate. It returns the
// current playback offset of the loaded media item in milliseconds, or the
// most recent offset played when playback is not active.
func (t *TransportState) FetchPlayerPosition() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return audioplayer.TimeUnknown
	}

	position := t.offsetMs
	if t.playing {
		position += t.now().Sub(t.anchor).Milliseconds()
	}
	if t.duration != audioplayer.TimeUnknown && position > t.duration {
		position = t.duration
	}
	return position
}

// FetchPlayerDuration implements audioplayer.EngineDelegate.
func (t *TransportState) FetchPlayerDuration() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.loaded {
		return audioplayer.TimeUnknown
	}
	return t.duration
}

// Close releases the delegate handle. Platform queries issued afterwards
// degrade to TimeUnknown instead of reaching a dead transport.
func (t *TransportState) Close() {
	t.ref.Release()
	slog.Debug("transport state closed")
}
