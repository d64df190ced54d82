package audio

import (
	"context"
	"errors"
)

// Common errors for Backend implementations
var (
	ErrBackendNotAvailable = errors.New("audio backend not available")
	ErrBackendClosed       = errors.New("audio backend is closed")
)

// Backend represents the host device's audio rendering endpoint.
// Implementations wrap the actual playback mechanism (malgo device, system
// commands) behind a uniform lifecycle.
type Backend interface {
	// Lifecycle management
	Start() error
	Stop() error
	Close() error

	// State management
	IsPlaying() bool
	SetVolume(volume float32) error
	GetVolume() float32

	// Render plays a media source to completion or context cancellation
	Render(ctx context.Context, source Source) error
}
