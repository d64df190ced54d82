package platform

import (
	"context"
	"log/slog"
	"sync/atomic"

	"voxbridge.dev/internal/audio"
	"voxbridge.dev/internal/audioplayer"
)

// SpeakerPlayer is the host device's concrete platform adapter. It embeds
// the default player behavior and overrides the notification hook to drive
// the audio backend: start rendering on PLAYING, halt on STOPPED, PAUSED and
// FINISHED, hold through BUFFER_UNDERRUN. The latest activity is cached with
// an atomic store because notifications arrive on an engine-owned goroutine
// while platform code reads the cache from its own.
type SpeakerPlayer struct {
	audioplayer.Base
	backend audio.Backend
	source  audio.Source
	last    atomic.Int64
}

var _ audioplayer.Player = (*SpeakerPlayer)(nil)

// NewSpeakerPlayer creates an adapter over the given backend.
func NewSpeakerPlayer(backend audio.Backend) *SpeakerPlayer {
	p := &SpeakerPlayer{backend: backend}
	p.last.Store(int64(audioplayer.ActivityIdle))
	return p
}

// SetSource sets the media source rendered on the next PLAYING transition.
func (p *SpeakerPlayer) SetSource(source audio.Source) {
	p.source = source
}

// OnPlayerActivityChanged converges the backend onto the notified activity.
// Faults are logged and swallowed; nothing propagates back to the engine's
// notification channel. Repeated notifications with the same activity are
// accepted and skip the backend round-trip.
func (p *SpeakerPlayer) OnPlayerActivityChanged(activity audioplayer.PlayerActivity) {
	if !activity.IsValid() {
		slog.Error("rejecting activity outside the enumerated set", "activity", int(activity))
		return
	}

	previous := audioplayer.PlayerActivity(p.last.Swap(int64(activity)))
	if previous == activity {
		slog.Debug("duplicate activity notification", "activity", activity.String())
		return
	}

	slog.Info("player activity changed",
		"previous", previous.String(),
		"current", activity.String())

	switch activity {
	case audioplayer.ActivityPlaying:
		if err := p.backend.Start(); err != nil {
			slog.Error("backend start failed", "error", err)
		}
	case audioplayer.ActivityStopped, audioplayer.ActivityPaused, audioplayer.ActivityFinished:
		if err := p.backend.Stop(); err != nil {
			slog.Error("backend stop failed", "error", err)
		}
	case audioplayer.ActivityBufferUnderrun, audioplayer.ActivityIdle:
		// Backend keeps its device state; the stall resolves engine-side
	}
}

// LastActivity returns the most recently notified activity.
func (p *SpeakerPlayer) LastActivity() audioplayer.PlayerActivity {
	return audioplayer.PlayerActivity(p.last.Load())
}

// Render plays the configured media source through the backend, blocking
// until it drains or the context is cancelled.
func (p *SpeakerPlayer) Render(ctx context.Context) error {
	if p.source == nil {
		slog.Debug("no media source configured, nothing to render")
		return nil
	}
	return p.backend.Render(ctx, p.source)
}

// Close shuts the backend down.
func (p *SpeakerPlayer) Close() error {
	return p.backend.Close()
}
