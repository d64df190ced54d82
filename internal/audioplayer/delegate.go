package audioplayer

import "sync/atomic"

// EngineDelegate supplies the authoritative transport-state values the
// platform player needs when its query methods are invoked. Implementations
// are synchronous, side-effect-free reads; a value that cannot be supplied
// is reported as TimeUnknown rather than through an error channel.
type EngineDelegate interface {
	// FetchPlayerPosition returns the current playback offset of the most
	// recent media item in milliseconds, or TimeUnknown.
	FetchPlayerPosition() int64

	// FetchPlayerDuration returns the total duration of the most recent
	// media item in milliseconds, or TimeUnknown.
	FetchPlayerDuration() int64
}

// DelegateRef is a non-owning handle to an EngineDelegate. The engine side
// that owns the delegate releases the ref when the delegate is torn down;
// holders resolve the ref at every use and treat a released ref as absent.
// This keeps the platform player from co-owning the engine's lifetime while
// guaranteeing it never reaches a dead delegate.
type DelegateRef struct {
	delegate EngineDelegate
	released atomic.Bool
}

// NewDelegateRef wraps a delegate in a releasable handle. A nil delegate
// yields a ref that never resolves.
func NewDelegateRef(d EngineDelegate) *DelegateRef {
	return &DelegateRef{delegate: d}
}

// Get resolves the referenced delegate. The second return value is false
// once the ref has been released, or when it never held a delegate.
func (r *DelegateRef) Get() (EngineDelegate, bool) {
	if r == nil || r.delegate == nil || r.released.Load() {
		return nil, false
	}
	return r.delegate, true
}

// Release marks the underlying delegate as gone. Safe to call more than
// once and concurrently with Get.
func (r *DelegateRef) Release() {
	if r != nil {
		r.released.Store(true)
	}
}
