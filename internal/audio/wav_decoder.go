package audio

import (
	"bytes"
	"io"
	"log/slog"
	"strings"

	"github.com/gen2brain/malgo"
	"github.com/youpy/go-wav"
)

// WavDecoder handles WAV audio format decoding
type WavDecoder struct{}

// NewWavDecoder creates a new WAV decoder instance
func NewWavDecoder() *WavDecoder {
	return &WavDecoder{}
}

// Decode reads WAV audio data from reader and returns decoded PCM
func (d *WavDecoder) Decode(reader io.Reader) (*PCM, error) {
	// youpy/go-wav needs a ReadSeeker, so buffer the whole stream first
	data, err := io.ReadAll(reader)
	if err != nil {
		slog.Error("failed to read WAV data", "error", err)
		return nil, ErrReadFailure
	}
	if len(data) == 0 {
		return nil, ErrInvalidData
	}

	wavReader := wav.NewReader(bytes.NewReader(data))
	format, err := wavReader.Format()
	if err != nil {
		slog.Error("failed to read WAV format", "error", err)
		return nil, ErrInvalidData
	}
	if format.NumChannels == 0 || format.SampleRate == 0 {
		slog.Error("invalid WAV format parameters",
			"channels", format.NumChannels,
			"sample_rate", format.SampleRate)
		return nil, ErrInvalidData
	}

	slog.Debug("WAV format detected",
		"sample_rate", format.SampleRate,
		"channels", format.NumChannels,
		"bits_per_sample", format.BitsPerSample)

	var sampleFormat malgo.FormatType
	switch format.BitsPerSample {
	case 16:
		sampleFormat = malgo.FormatS16
	case 24:
		sampleFormat = malgo.FormatS24
	case 32:
		sampleFormat = malgo.FormatS32
	default:
		slog.Error("unsupported WAV bit depth", "bits", format.BitsPerSample)
		return nil, ErrUnsupportedFormat
	}

	var samples []wav.Sample
	for {
		chunk, err := wavReader.ReadSamples()
		if err != nil {
			if err == io.EOF {
				break
			}
			slog.Error("failed to read WAV samples", "error", err)
			return nil, ErrReadFailure
		}
		if len(chunk) == 0 {
			break
		}
		samples = append(samples, chunk...)
	}

	if len(samples) == 0 {
		return nil, ErrInvalidData
	}

	raw := encodeSamples(samples, int(format.NumChannels), int(format.BitsPerSample))

	pcm := &PCM{
		Samples:    raw,
		Channels:   uint32(format.NumChannels),
		SampleRate: format.SampleRate,
		Format:     sampleFormat,
	}

	slog.Info("WAV decode completed",
		"total_bytes", len(raw),
		"channels", pcm.Channels,
		"sample_rate", pcm.SampleRate,
		"duration_estimate_ms", pcm.DurationMs())

	return pcm, nil
}

// encodeSamples interleaves sample values into little-endian PCM bytes.
// Missing channel data is written as silence.
func encodeSamples(samples []wav.Sample, channels, bitsPerSample int) []byte {
	bytesPerValue := bitsPerSample / 8
	raw := make([]byte, 0, len(samples)*channels*bytesPerValue)

	for _, sample := range samples {
		for ch := 0; ch < channels; ch++ {
			var val int
			if ch < len(sample.Values) {
				val = sample.Values[ch]
			}
			for b := 0; b < bytesPerValue; b++ {
				raw = append(raw, byte(val>>(8*b)))
			}
		}
	}
	return raw
}

// CanDecode checks if this decoder can handle the given filename
func (d *WavDecoder) CanDecode(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".wav") || strings.HasSuffix(lower, ".wave")
}

// FormatName returns the name of the format this decoder handles
func (d *WavDecoder) FormatName() string {
	return "WAV"
}
