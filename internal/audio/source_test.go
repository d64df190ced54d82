package audio

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileSourceAsFilePath(t *testing.T) {
	registry := NewDefaultRegistry()

	source := NewFileSource("/sounds/chime.wav", registry)
	path, err := source.AsFilePath()
	if err != nil {
		t.Fatalf("AsFilePath failed: %v", err)
	}
	if path != "/sounds/chime.wav" {
		t.Errorf("expected path to round-trip, got %q", path)
	}

	empty := NewFileSource("", registry)
	if _, err := empty.AsFilePath(); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestFileSourceFormatDetection(t *testing.T) {
	registry := NewDefaultRegistry()

	testCases := []struct {
		path   string
		format string
	}{
		{"chime.wav", "wav"},
		{"chime.mp3", "mp3"},
		{"chime.aiff", "aiff"},
		{"chime.flac", ""},
	}

	for _, tc := range testCases {
		source := NewFileSource(tc.path, registry)
		if got := source.Format(); got != tc.format {
			t.Errorf("Format(%q) = %q, expected %q", tc.path, got, tc.format)
		}
	}

	// No registry degrades to unknown
	source := NewFileSource("chime.wav", nil)
	if source.Format() != "" {
		t.Error("expected empty format without registry")
	}
}

func TestFileSourceAsReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.wav")
	if err := os.WriteFile(path, generateTestWAV(), 0644); err != nil {
		t.Fatal(err)
	}

	source := NewFileSource(path, NewDefaultRegistry())
	reader, format, err := source.AsReader()
	if err != nil {
		t.Fatalf("AsReader failed: %v", err)
	}
	defer reader.Close()

	if format != "wav" {
		t.Errorf("expected wav format, got %q", format)
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("expected file contents")
	}
}

func TestFileSourceAsReaderUnsupportedFormat(t *testing.T) {
	source := NewFileSource("clip.xyz", NewDefaultRegistry())

	_, _, err := source.AsReader()
	if !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestReaderSource(t *testing.T) {
	reader := io.NopCloser(strings.NewReader("pcm-ish bytes"))
	source := NewReaderSource(reader, "mp3")

	if _, err := source.AsFilePath(); !errors.Is(err, ErrNotSupported) {
		t.Errorf("expected ErrNotSupported, got %v", err)
	}

	r, format, err := source.AsReader()
	if err != nil {
		t.Fatalf("AsReader failed: %v", err)
	}
	if format != "mp3" {
		t.Errorf("expected mp3 format, got %q", format)
	}
	data, _ := io.ReadAll(r)
	if string(data) != "pcm-ish bytes" {
		t.Errorf("unexpected reader contents: %q", data)
	}
}

func TestReaderSourceNilReader(t *testing.T) {
	source := NewReaderSource(nil, "wav")

	_, _, err := source.AsReader()
	if !errors.Is(err, ErrSourceClosed) {
		t.Errorf("expected ErrSourceClosed, got %v", err)
	}
}
