package audio

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/gen2brain/malgo"
)

// deviceContext wraps malgo.AllocatedContext with lifecycle management.
type deviceContext struct {
	ctx *malgo.AllocatedContext
}

// newDeviceContext initializes a malgo context routed through slog.
func newDeviceContext() (*deviceContext, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {
		slog.Debug("malgo internal", "message", message)
	})
	if err != nil {
		slog.Error("failed to initialize audio device context", "error", err)
		return nil, fmt.Errorf("failed to initialize audio device context: %w", err)
	}
	return &deviceContext{ctx: ctx}, nil
}

// Close releases the malgo context. malgo requires both Uninit and Free.
func (c *deviceContext) Close() error {
	if c.ctx == nil {
		return nil
	}
	if err := c.ctx.Uninit(); err != nil {
		slog.Error("failed to uninitialize audio device context", "error", err)
		return err
	}
	c.ctx.Free()
	c.ctx = nil
	return nil
}

// renderPCM streams a decoded buffer to a playback device, returning when
// the buffer drains or the context is cancelled. Volume is applied to
// 16-bit samples in the device callback.
func renderPCM(ctx context.Context, devCtx *deviceContext, pcm *PCM, volume float32) error {
	if devCtx == nil || devCtx.ctx == nil {
		return ErrBackendClosed
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = pcm.Format
	deviceConfig.Playback.Channels = pcm.Channels
	deviceConfig.SampleRate = pcm.SampleRate
	deviceConfig.Alsa.NoMMap = 1

	slog.Debug("playback device configuration",
		"format", pcm.Format,
		"channels", pcm.Channels,
		"sample_rate", pcm.SampleRate)

	reader := newPCMReader(pcm.Samples)
	drained := make(chan struct{})
	var drainOnce sync.Once

	onSamples := func(output, _ []byte, frameCount uint32) {
		select {
		case <-ctx.Done():
			for i := range output {
				output[i] = 0
			}
			return
		default:
		}

		n, err := io.ReadFull(reader, output)
		if err != nil {
			for i := n; i < len(output); i++ {
				output[i] = 0
			}
			drainOnce.Do(func() { close(drained) })
		}

		if volume != 1.0 && n > 0 && pcm.Format == malgo.FormatS16 {
			for i := 0; i+1 < n; i += 2 {
				sample := int16(output[i]) | int16(output[i+1])<<8
				sample = int16(float32(sample) * volume)
				output[i] = byte(sample)
				output[i+1] = byte(sample >> 8)
			}
		}
	}

	device, err := malgo.InitDevice(devCtx.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		return fmt.Errorf("failed to initialize playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	defer device.Stop()

	slog.Debug("device playback started", "total_bytes", len(pcm.Samples))

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-drained:
		return nil
	}
}

// pcmReader is a mutex-guarded reader over a sample buffer, safe for the
// device callback thread.
type pcmReader struct {
	mu   sync.Mutex
	data []byte
	pos  int
}

func newPCMReader(data []byte) *pcmReader {
	return &pcmReader{data: data}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pos >= len(r.data) {
		return 0, io.EOF
	}
	n := copy(p, r.data[r.pos:])
	r.pos += n
	return n, nil
}
