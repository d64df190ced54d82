package audio

import (
	"errors"
	"io"

	"github.com/gen2brain/malgo"
)

// Common decoder errors
var (
	ErrInvalidData       = errors.New("invalid audio data")
	ErrReadFailure       = errors.New("failed to read audio data")
	ErrUnsupportedFormat = errors.New("unsupported audio format")
)

// PCM holds decoded audio ready for device playback.
type PCM struct {
	Samples    []byte           // Raw interleaved PCM data
	Channels   uint32           // Number of audio channels
	SampleRate uint32           // Sample rate in Hz
	Format     malgo.FormatType // Sample format (e.g. malgo.FormatS16)
}

// DurationMs estimates the playback length of the buffer in milliseconds.
func (p *PCM) DurationMs() int64 {
	bytesPerSample := 0
	switch p.Format {
	case malgo.FormatS16:
		bytesPerSample = 2
	case malgo.FormatS24:
		bytesPerSample = 3
	case malgo.FormatS32, malgo.FormatF32:
		bytesPerSample = 4
	case malgo.FormatU8:
		bytesPerSample = 1
	}

	bytesPerSecond := int(p.Channels) * int(p.SampleRate) * bytesPerSample
	if bytesPerSecond == 0 {
		return 0
	}
	return int64(len(p.Samples)) * 1000 / int64(bytesPerSecond)
}

// Decoder turns encoded media bytes into PCM.
type Decoder interface {
	// Decode reads encoded audio from reader and returns decoded PCM
	Decode(reader io.Reader) (*PCM, error)

	// CanDecode checks if this decoder handles the given filename
	CanDecode(filename string) bool

	// FormatName returns the name of the format this decoder handles
	FormatName() string
}
