package audio

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// MalgoBackend renders media through a malgo playback device.
type MalgoBackend struct {
	registry  *Registry
	devCtx    *deviceContext
	volume    float32
	isPlaying bool
	closed    bool
	mutex     sync.RWMutex
}

var _ Backend = (*MalgoBackend)(nil)

// NewMalgoBackend creates a MalgoBackend with the default decoder registry.
// The device context is initialized lazily on first render.
func NewMalgoBackend() *MalgoBackend {
	return &MalgoBackend{
		registry: NewDefaultRegistry(),
		volume:   1.0,
	}
}

// Start initializes the backend (no-op until the first render)
func (b *MalgoBackend) Start() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	slog.Debug("malgo backend started")
	return nil
}

// Stop stops any ongoing playback
func (b *MalgoBackend) Stop() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	b.isPlaying = false
	slog.Debug("malgo backend stopped")
	return nil
}

// Close shuts down the backend and releases the device context
func (b *MalgoBackend) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.isPlaying = false

	if b.devCtx != nil {
		if err := b.devCtx.Close(); err != nil {
			return fmt.Errorf("error closing device context: %w", err)
		}
		b.devCtx = nil
	}

	slog.Debug("malgo backend closed")
	return nil
}

// IsPlaying returns the current playing state
func (b *MalgoBackend) IsPlaying() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.isPlaying && !b.closed
}

// SetVolume sets the volume level (0.0 to 1.0)
func (b *MalgoBackend) SetVolume(volume float32) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("invalid volume level: %f (must be 0.0-1.0)", volume)
	}

	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	b.volume = volume
	return nil
}

// GetVolume returns the current volume level
func (b *MalgoBackend) GetVolume() float32 {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.volume
}

// Render decodes the source and streams it to a playback device.
func (b *MalgoBackend) Render(ctx context.Context, source Source) error {
	b.mutex.Lock()
	if b.closed {
		b.mutex.Unlock()
		return ErrBackendClosed
	}
	if b.devCtx == nil {
		devCtx, err := newDeviceContext()
		if err != nil {
			b.mutex.Unlock()
			return err
		}
		b.devCtx = devCtx
	}
	devCtx := b.devCtx
	volume := b.volume
	b.isPlaying = true
	b.mutex.Unlock()

	defer func() {
		b.mutex.Lock()
		b.isPlaying = false
		b.mutex.Unlock()
	}()

	pcm, err := b.decode(source)
	if err != nil {
		return err
	}

	// Bound playback by the buffer length plus a drain margin
	renderCtx := ctx
	if durationMs := pcm.DurationMs(); durationMs > 0 {
		var cancel context.CancelFunc
		renderCtx, cancel = context.WithTimeout(ctx, time.Duration(durationMs)*time.Millisecond+500*time.Millisecond)
		defer cancel()
	}

	return renderPCM(renderCtx, devCtx, pcm, volume)
}

// decode resolves the source to PCM through the registry.
func (b *MalgoBackend) decode(source Source) (*PCM, error) {
	reader, format, err := source.AsReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get media data from source: %w", err)
	}
	defer reader.Close()

	decoder := b.registry.findByFormat(formatToken(format))
	if decoder == nil {
		slog.Error("no decoder for media format", "format", format)
		return nil, ErrUnsupportedFormat
	}

	pcm, err := decoder.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s media: %w", format, err)
	}
	return pcm, nil
}

// formatToken normalizes a lowercase format token to a registry format name.
func formatToken(format string) string {
	switch format {
	case "wav", "wave":
		return "WAV"
	case "mp3", "mpeg":
		return "MP3"
	case "aiff", "aif":
		return "AIFF"
	default:
		return ""
	}
}
