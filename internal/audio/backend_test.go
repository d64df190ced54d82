package audio

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

// TestBackendInterface ensures the interface compiles with expected methods
func TestBackendInterface(t *testing.T) {
	var _ Backend = (*mockBackend)(nil)
	var _ Backend = (*MalgoBackend)(nil)
	var _ Backend = (*SystemCommandBackend)(nil)
}

// mockBackend is a test implementation of Backend
type mockBackend struct {
	volume    float32
	isPlaying bool
	closed    bool
	renderErr error
	rendered  int
}

func (m *mockBackend) Start() error {
	if m.closed {
		return ErrBackendClosed
	}
	return nil
}

func (m *mockBackend) Stop() error {
	if m.closed {
		return ErrBackendClosed
	}
	m.isPlaying = false
	return nil
}

func (m *mockBackend) Close() error {
	m.closed = true
	m.isPlaying = false
	return nil
}

func (m *mockBackend) IsPlaying() bool {
	return m.isPlaying && !m.closed
}

func (m *mockBackend) SetVolume(volume float32) error {
	if m.closed {
		return ErrBackendClosed
	}
	if volume < 0.0 || volume > 1.0 {
		return errors.New("invalid volume")
	}
	m.volume = volume
	return nil
}

func (m *mockBackend) GetVolume() float32 {
	return m.volume
}

func (m *mockBackend) Render(ctx context.Context, source Source) error {
	if m.closed {
		return ErrBackendClosed
	}
	m.rendered++
	return m.renderErr
}

func TestMockBackendLifecycle(t *testing.T) {
	backend := &mockBackend{volume: 1.0}

	if err := backend.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := backend.SetVolume(0.5); err != nil {
		t.Fatalf("SetVolume failed: %v", err)
	}
	if backend.GetVolume() != 0.5 {
		t.Errorf("expected volume 0.5, got %f", backend.GetVolume())
	}

	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := backend.Start(); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("expected ErrBackendClosed after close, got %v", err)
	}
}

func TestSystemCommandBackendClosedErrors(t *testing.T) {
	backend := NewSystemCommandBackend("nonexistent-player-command")

	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	if err := backend.Start(); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("expected ErrBackendClosed from Start, got %v", err)
	}
	if err := backend.Stop(); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("expected ErrBackendClosed from Stop, got %v", err)
	}
	if err := backend.SetVolume(0.5); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("expected ErrBackendClosed from SetVolume, got %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	source := NewReaderSource(io.NopCloser(strings.NewReader("data")), "wav")
	if err := backend.Render(ctx, source); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("expected ErrBackendClosed from Render, got %v", err)
	}
}

func TestSystemCommandBackendVolumeValidation(t *testing.T) {
	backend := NewSystemCommandBackend("paplay")
	defer backend.Close()

	if err := backend.SetVolume(-0.1); err == nil {
		t.Error("expected error for negative volume")
	}
	if err := backend.SetVolume(1.5); err == nil {
		t.Error("expected error for volume above 1.0")
	}
	if err := backend.SetVolume(0.7); err != nil {
		t.Errorf("expected no error for valid volume, got %v", err)
	}
	if backend.GetVolume() != 0.7 {
		t.Errorf("expected volume 0.7, got %f", backend.GetVolume())
	}
}

func TestMalgoBackendClosedErrors(t *testing.T) {
	backend := NewMalgoBackend()

	if err := backend.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	// Idempotent close
	if err := backend.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	if err := backend.Start(); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("expected ErrBackendClosed from Start, got %v", err)
	}

	ctx := context.Background()
	source := NewReaderSource(io.NopCloser(strings.NewReader("data")), "wav")
	if err := backend.Render(ctx, source); !errors.Is(err, ErrBackendClosed) {
		t.Errorf("expected ErrBackendClosed from Render, got %v", err)
	}
}
