package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
)

// SystemCommandBackend renders media by delegating to a system audio
// command such as paplay or afplay.
type SystemCommandBackend struct {
	command   string
	volume    float32
	isPlaying bool
	closed    bool
	mutex     sync.RWMutex
}

var _ Backend = (*SystemCommandBackend)(nil)

// NewSystemCommandBackend creates a backend around the given command.
func NewSystemCommandBackend(command string) *SystemCommandBackend {
	slog.Debug("creating system command backend", "command", command)
	return &SystemCommandBackend{
		command: command,
		volume:  1.0,
	}
}

// Start initializes the backend (no-op for system commands)
func (b *SystemCommandBackend) Start() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	return nil
}

// Stop stops any ongoing playback (limited control with system commands)
func (b *SystemCommandBackend) Stop() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	b.isPlaying = false
	return nil
}

// Close shuts down the backend
func (b *SystemCommandBackend) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	b.closed = true
	b.isPlaying = false
	return nil
}

// IsPlaying returns the current playing state
func (b *SystemCommandBackend) IsPlaying() bool {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.isPlaying && !b.closed
}

// SetVolume sets the volume level (0.0 to 1.0). System commands do not take
// a volume argument uniformly, so the value is stored but best-effort.
func (b *SystemCommandBackend) SetVolume(volume float32) error {
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
func (b *SystemCommandBackend) GetVolume() float32 {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.volume
}

// Render plays the source through the configured system command.
func (b *SystemCommandBackend) Render(ctx context.Context, source Source) error {
	b.mutex.Lock()
	if b.closed {
		b.mutex.Unlock()
		return ErrBackendClosed
	}
	b.isPlaying = true
	b.mutex.Unlock()

	defer func() {
		b.mutex.Lock()
		b.isPlaying = false
		b.mutex.Unlock()
	}()

	// File paths avoid a copy; readers go through a temp file
	if filePath, err := source.AsFilePath(); err == nil {
		return b.renderFile(ctx, filePath)
	}

	reader, format, err := source.AsReader()
	if err != nil {
		return fmt.Errorf("failed to get media data from source: %w", err)
	}
	defer reader.Close()

	return b.renderReaderViaTempFile(ctx, reader, format)
}

// renderFile plays a file directly using the system command
func (b *SystemCommandBackend) renderFile(ctx context.Context, filePath string) error {
	slog.Debug("playing file via system command", "file", filePath, "command", b.command)

	cmd := exec.CommandContext(ctx, b.command, filePath)
	if err := cmd.Run(); err != nil {
		slog.Error("system command failed",
			"command", b.command,
			"file", filePath,
			"error", err)
		return fmt.Errorf("system command failed: %w", err)
	}
	return nil
}

// renderReaderViaTempFile spills reader data to a temporary file and plays it
func (b *SystemCommandBackend) renderReaderViaTempFile(ctx context.Context, reader io.Reader, format string) error {
	tempFile, err := os.CreateTemp("", "voxbridge-*."+format)
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}

	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if _, err := io.Copy(tempFile, reader); err != nil {
		tempFile.Close()
		return fmt.Errorf("failed to write media data to temporary file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	slog.Debug("temporary media file created", "path", tempPath, "format", format)
	return b.renderFile(ctx, tempPath)
}
