package audio

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Common errors for Source implementations
var (
	ErrNotSupported  = errors.New("operation not supported by this source")
	ErrInvalidFormat = errors.New("invalid audio format")
	ErrSourceClosed  = errors.New("audio source is closed")
)

// Source represents a media item the backend can render. Implementations
// provide the data either as a file path (cheapest for command backends) or
// as a reader with format information.
type Source interface {
	// AsFilePath returns a file path when the source has one, or
	// ErrNotSupported otherwise.
	AsFilePath() (string, error)

	// AsReader returns a reader for the media data along with a lowercase
	// format token ("wav", "mp3", "aiff"). The caller closes the reader.
	AsReader() (io.ReadCloser, string, error)
}

// FileSource is a Source backed by a file on disk.
type FileSource struct {
	path     string
	registry *Registry
}

// NewFileSource creates a FileSource for the given path; the registry is
// consulted for format detection.
func NewFileSource(path string, registry *Registry) *FileSource {
	return &FileSource{path: path, registry: registry}
}

// AsFilePath returns the backing file path.
func (s *FileSource) AsFilePath() (string, error) {
	if s.path == "" {
		return "", fmt.Errorf("file path is empty")
	}
	return s.path, nil
}

// AsReader opens the file after detecting its format.
func (s *FileSource) AsReader() (io.ReadCloser, string, error) {
	if s.path == "" {
		return nil, "", fmt.Errorf("file path is empty")
	}

	format := s.Format()
	if format == "" {
		slog.Error("unsupported media format", "path", s.path)
		return nil, "", ErrInvalidFormat
	}

	file, err := os.Open(s.path)
	if err != nil {
		slog.Error("failed to open media file", "path", s.path, "error", err)
		return nil, "", fmt.Errorf("failed to open media file: %w", err)
	}

	slog.Debug("file source opened", "path", s.path, "format", format)
	return file, format, nil
}

// Format returns the lowercase format token for the backing file, or ""
// when no registered decoder handles it.
func (s *FileSource) Format() string {
	if s.registry == nil {
		slog.Warn("no registry available for format detection", "path", s.path)
		return ""
	}

	decoder := s.registry.DetectFormat(s.path)
	if decoder == nil {
		return ""
	}
	return strings.ToLower(decoder.FormatName())
}

// ReaderSource is a Source backed by an io.ReadCloser, for streamed or
// in-memory media.
type ReaderSource struct {
	reader io.ReadCloser
	format string
}

// NewReaderSource wraps a reader with its format token.
func NewReaderSource(reader io.ReadCloser, format string) *ReaderSource {
	return &ReaderSource{reader: reader, format: format}
}

// AsFilePath always returns ErrNotSupported.
func (s *ReaderSource) AsFilePath() (string, error) {
	return "", ErrNotSupported
}

// AsReader returns the stored reader and format.
func (s *ReaderSource) AsReader() (io.ReadCloser, string, error) {
	if s.reader == nil {
		return nil, "", ErrSourceClosed
	}
	return s.reader, s.format, nil
}
