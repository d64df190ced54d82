package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/go-audio/aiff"
	"github.com/go-audio/audio"
)

// AiffDecoder handles AIFF audio format decoding
type AiffDecoder struct{}

// NewAiffDecoder creates a new AIFF decoder instance
func NewAiffDecoder() *AiffDecoder {
	return &AiffDecoder{}
}

// Decode reads AIFF audio data from reader and returns decoded PCM
func (d *AiffDecoder) Decode(reader io.Reader) (*PCM, error) {
	// go-audio/aiff needs a ReadSeeker, so buffer the whole stream first
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read AIFF data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	decoder := aiff.NewDecoder(bytes.NewReader(data))
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		slog.Error("invalid AIFF file")
		return nil, ErrInvalidData
	}

	sampleRate := uint32(decoder.SampleRate)
	channels := uint32(decoder.NumChans)
	bitDepth := int(decoder.SampleBitDepth())
	if channels == 0 || sampleRate == 0 || bitDepth == 0 {
		slog.Error("invalid AIFF format parameters",
			"channels", channels,
			"sample_rate", sampleRate,
			"bit_depth", bitDepth)
		return nil, ErrInvalidData
	}

	var sampleFormat malgo.FormatType
	switch bitDepth {
	case 16:
		sampleFormat = malgo.FormatS16
	case 24:
		sampleFormat = malgo.FormatS24
	case 32:
		sampleFormat = malgo.FormatS32
	default:
		slog.Error("unsupported AIFF bit depth", "bits", bitDepth)
		return nil, ErrUnsupportedFormat
	}

	buffer, err := decoder.FullPCMBuffer()
	if err != nil {
		slog.Error("failed to read AIFF samples", "error", err)
		return nil, ErrReadFailure
	}
	if buffer == nil || len(buffer.Data) == 0 {
		return nil, ErrInvalidData
	}

	pcm := &PCM{
		Samples:    encodeIntBuffer(buffer, bitDepth),
		Channels:   channels,
		SampleRate: sampleRate,
		Format:     sampleFormat,
	}

	slog.Info("AIFF decode completed",
		"total_bytes", len(pcm.Samples),
		"channels", pcm.Channels,
		"sample_rate", pcm.SampleRate,
		"duration_estimate_ms", pcm.DurationMs())

	return pcm, nil
}

// encodeIntBuffer writes the int buffer out as little-endian PCM bytes at
// the given bit depth.
func encodeIntBuffer(buffer *audio.IntBuffer, bitDepth int) []byte {
	bytesPerValue := bitDepth / 8
	raw := make([]byte, 0, len(buffer.Data)*bytesPerValue)

	for _, sample := range buffer.Data {
		for b := 0; b < bytesPerValue; b++ {
			raw = append(raw, byte(sample>>(8*b)))
		}
	}
	return raw
}

// CanDecode checks if this decoder can handle the given filename
func (d *AiffDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".aiff") || strings.HasSuffix(lower, ".aif")
}

// FormatName returns the name of the format this decoder handles
func (d *AiffDecoder) FormatName() string {
	return "AIFF"
}
