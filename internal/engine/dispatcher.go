package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"voxbridge.dev/internal/audioplayer"
	"voxbridge.dev/internal/directive"
)

// Dispatcher errors
var (
	ErrNoPlayerRegistered = errors.New("no platform player registered")
	ErrNilEvent           = errors.New("nil directive event")
)

// ActivityHook is called after each activity transition has been delivered
// to the platform player. Position and duration are transport snapshots
// taken at delivery time; either may be audioplayer.TimeUnknown.
type ActivityHook func(sessionID string, previous, current audioplayer.PlayerActivity, positionMs, durationMs int64)

// DispatcherOption is a functional option for configuring a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithActivityHook adds a hook invoked on every dispatched transition.
func WithActivityHook(hook ActivityHook) DispatcherOption {
	return func(d *Dispatcher) {
		d.hooks = append(d.hooks, hook)
	}
}

// Dispatcher routes engine playback directives to the registered platform
// player. It derives the activity transition from each directive, updates
// the transport authority, and delivers the notification. Transitions are
// not validated against a table; the latest value always wins and repeated
// activities are delivered as-is.
type Dispatcher struct {
	mu        sync.Mutex
	player    audioplayer.Player
	last      audioplayer.PlayerActivity
	transport *TransportState
	hooks     []ActivityHook
}

// NewDispatcher creates a dispatcher bound to a transport authority.
func NewDispatcher(transport *TransportState, opts ...DispatcherOption) *Dispatcher {
	slog.Debug("creating new dispatcher")

	d := &Dispatcher{
		transport: transport,
		last:      audioplayer.ActivityIdle,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RegisterPlayer wires a platform player into the engine session, handing it
// the transport's delegate handle. Registering a new player replaces the
// previous one; the old player is unregistered so its queries degrade to
// TimeUnknown rather than reading another session's transport.
func (d *Dispatcher) RegisterPlayer(player audioplayer.Player) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.player != nil && d.player != player {
		d.player.RegisterEngineDelegate(nil)
	}

	d.player = player
	if player != nil {
		player.RegisterEngineDelegate(d.transport.DelegateRef())
	}

	slog.Info("platform player registered", "registered", player != nil)
}

// Dispatch applies a parsed directive: primes the transport for Play
// directives, advances the transport clock, and notifies the platform
// player. The notification channel never fails; platform faults are
// absorbed and logged.
func (d *Dispatcher) Dispatch(event *directive.Event) error {
	if event == nil {
		return ErrNilEvent
	}

	activity, ok := event.Activity()
	if !ok {
		return fmt.Errorf("%w: %q", directive.ErrUnknownDirective, event.DirectiveName)
	}

	d.mu.Lock()
	player := d.player
	previous := d.last
	if player == nil {
		d.mu.Unlock()
		return ErrNoPlayerRegistered
	}
	d.last = activity
	d.mu.Unlock()

	if event.LoadsMedia() {
		d.transport.LoadMedia(event.Offset(), event.Duration())
	}
	d.transport.ApplyActivity(activity)

	slog.Debug("dispatching activity transition",
		"session_id", event.SessionID,
		"previous", previous.String(),
		"current", activity.String())

	d.notify(player, activity)

	positionMs := d.transport.FetchPlayerPosition()
	durationMs := d.transport.FetchPlayerDuration()
	for _, hook := range d.hooks {
		hook(event.SessionID, previous, activity, positionMs, durationMs)
	}

	return nil
}

// LastActivity returns the most recently dispatched activity.
func (d *Dispatcher) LastActivity() audioplayer.PlayerActivity {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

// Close tears down the session: the player is unregistered and the
// transport's delegate handle released.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	player := d.player
	d.player = nil
	d.mu.Unlock()

	if player != nil {
		player.RegisterEngineDelegate(nil)
	}
	d.transport.Close()

	slog.Debug("dispatcher closed")
}

// notify delivers the activity change, absorbing panics so a platform fault
// can never propagate back into the engine's notification channel.
func (d *Dispatcher) notify(player audioplayer.Player, activity audioplayer.PlayerActivity) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("platform player panicked in activity notification",
				"activity", activity.String(),
				"panic", r)
		}
	}()

	player.OnPlayerActivityChanged(activity)
}
