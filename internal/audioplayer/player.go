package audioplayer

import (
	"log/slog"
	"sync/atomic"
)

// Player is the platform-facing audio player capability. The engine drives
// it with activity notifications; the platform reads transport state through
// it. Concrete platform adapters embed Base and override the notification
// hook.
type Player interface {
	// OnPlayerActivityChanged is invoked by the engine whenever playback
	// activity transitions. Implementations must absorb internal failures;
	// nothing may propagate back to the notifying caller. Repeated
	// notifications with the same activity are normal and must be tolerated.
	OnPlayerActivityChanged(activity PlayerActivity)

	// PlayerPosition returns the playback offset in milliseconds of the most
	// recent media item, or TimeUnknown when no delegate can supply one.
	PlayerPosition() int64

	// PlayerDuration returns the playback duration in milliseconds of the
	// most recent media item, or TimeUnknown when no delegate can supply one.
	PlayerDuration() int64

	// RegisterEngineDelegate stores a non-owning reference to the engine
	// delegate, replacing any previous one. Called by the engine during
	// player registration, never by platform code. A nil ref unregisters.
	RegisterEngineDelegate(ref *DelegateRef)
}

// Base is the default Player implementation, meant to be embedded by
// platform adapters. The notification hook is a no-op; position and duration
// queries trampoline to the registered engine delegate. The delegate slot is
// a single replace-on-set reference scoped to this instance: registration is
// rare, reads are frequent, so the slot is an atomic pointer rather than a
// mutex.
type Base struct {
	delegate atomic.Pointer[DelegateRef]
}

var _ Player = (*Base)(nil)

// OnPlayerActivityChanged does nothing. Platform adapters override it to
// drive their own audio and UI state.
func (b *Base) OnPlayerActivityChanged(activity PlayerActivity) {}

// PlayerPosition returns the engine-reported playback offset in
// milliseconds, or TimeUnknown when no live delegate is registered.
func (b *Base) PlayerPosition() int64 {
	d, ok := b.resolveDelegate()
	if !ok {
		return TimeUnknown
	}
	return d.FetchPlayerPosition()
}

// PlayerDuration returns the engine-reported playback duration in
// milliseconds, or TimeUnknown when no live delegate is registered.
func (b *Base) PlayerDuration() int64 {
	d, ok := b.resolveDelegate()
	if !ok {
		return TimeUnknown
	}
	return d.FetchPlayerDuration()
}

// RegisterEngineDelegate replaces the delegate reference outright. At most
// one delegate is registered at a time; there is no multiplexing and no
// ownership transfer in either direction.
func (b *Base) RegisterEngineDelegate(ref *DelegateRef) {
	b.delegate.Store(ref)
	slog.Debug("engine delegate registration changed", "registered", ref != nil)
}

// resolveDelegate loads the current ref and checks liveness. A missing ref,
// a released ref, and an empty ref all degrade to absent.
func (b *Base) resolveDelegate() (EngineDelegate, bool) {
	ref := b.delegate.Load()
	if ref == nil {
		return nil, false
	}
	return ref.Get()
}
