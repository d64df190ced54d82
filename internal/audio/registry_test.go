package audio

import (
	"bytes"
	"testing"
)

func TestDefaultRegistryFormats(t *testing.T) {
	registry := NewDefaultRegistry()

	formats := registry.SupportedFormats()
	if len(formats) != 3 {
		t.Fatalf("expected 3 formats, got %d: %v", len(formats), formats)
	}

	expected := map[string]bool{"WAV": true, "MP3": true, "AIFF": true}
	for _, format := range formats {
		if !expected[format] {
			t.Errorf("unexpected format %q", format)
		}
	}
}

func TestRegistryDetectFormatByExtension(t *testing.T) {
	registry := NewDefaultRegistry()

	testCases := []struct {
		filename string
		format   string // "" means no decoder expected
	}{
		{"track.wav", "WAV"},
		{"track.mp3", "MP3"},
		{"track.aiff", "AIFF"},
		{"track.flac", ""},
		{"", ""},
	}

	for _, tc := range testCases {
		decoder := registry.DetectFormat(tc.filename)
		if tc.format == "" {
			if decoder != nil {
				t.Errorf("DetectFormat(%q): expected nil, got %s", tc.filename, decoder.FormatName())
			}
			continue
		}
		if decoder == nil {
			t.Errorf("DetectFormat(%q): expected %s, got nil", tc.filename, tc.format)
			continue
		}
		if decoder.FormatName() != tc.format {
			t.Errorf("DetectFormat(%q) = %s, expected %s", tc.filename, decoder.FormatName(), tc.format)
		}
	}
}

func TestRegistryDetectFormatWithContent(t *testing.T) {
	registry := NewDefaultRegistry()

	// WAV magic bytes win over a misleading extension
	decoder := registry.DetectFormatWithContent("mislabeled.mp3", bytes.NewReader(generateTestWAV()))
	if decoder == nil {
		t.Fatal("expected a decoder from content detection")
	}
	if decoder.FormatName() != "WAV" {
		t.Errorf("expected WAV from magic bytes, got %s", decoder.FormatName())
	}
}

func TestRegistryDetectFormatWithContentFallsBackToExtension(t *testing.T) {
	registry := NewDefaultRegistry()

	// Unrecognizable content falls back to the extension
	decoder := registry.DetectFormatWithContent("track.mp3", bytes.NewReader([]byte("xx")))
	if decoder == nil {
		t.Fatal("expected extension fallback to find a decoder")
	}
	if decoder.FormatName() != "MP3" {
		t.Errorf("expected MP3 from extension fallback, got %s", decoder.FormatName())
	}
}

func TestRegistryRegisterNilDecoder(t *testing.T) {
	registry := NewRegistry()
	registry.Register(nil)

	if len(registry.Decoders()) != 0 {
		t.Error("nil decoder should not be registered")
	}
}
