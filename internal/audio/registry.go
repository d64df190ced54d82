package audio

import (
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Registry manages format decoders and performs format detection by
// extension and by content sniffing.
type Registry struct {
	decoders []Decoder
}

// NewRegistry creates an empty decoder registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make([]Decoder, 0)}
}

// NewDefaultRegistry creates a registry with the WAV, MP3 and AIFF decoders.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(NewWavDecoder())
	registry.Register(NewMp3Decoder())
	registry.Register(NewAiffDecoder())

	slog.Debug("default decoder registry initialized",
		"supported_formats", registry.SupportedFormats())
	return registry
}

// Register adds a decoder. Earlier registrations win detection ties.
func (r *Registry) Register(decoder Decoder) {
	if decoder == nil {
		slog.Warn("attempted to register nil decoder")
		return
	}
	r.decoders = append(r.decoders, decoder)
	slog.Debug("decoder registered", "format", decoder.FormatName())
}

// Decoders returns all registered decoders.
func (r *Registry) Decoders() []Decoder {
	return r.decoders
}

// SupportedFormats returns the names of all registered formats.
func (r *Registry) SupportedFormats() []string {
	formats := make([]string, 0, len(r.decoders))
	for _, decoder := range r.decoders {
		formats = append(formats, decoder.FormatName())
	}
	return formats
}

// DetectFormat picks a decoder based on filename extension only.
func (r *Registry) DetectFormat(filename string) Decoder {
	if filename == "" {
		return nil
	}

	for _, decoder := range r.decoders {
		if decoder.CanDecode(filename) {
			slog.Debug("format detected by extension",
				"filename", filename,
				"format", decoder.FormatName())
			return decoder
		}
	}

	slog.Debug("no decoder found for filename", "filename", filename)
	return nil
}

// DetectFormatWithContent sniffs magic bytes first and falls back to the
// extension. The sniffed header bytes are consumed from reader; callers that
// need the full stream should pass a fresh reader to the decoder.
func (r *Registry) DetectFormatWithContent(filename string, reader io.Reader) Decoder {
	header := make([]byte, 512)
	n, err := reader.Read(header)
	if err != nil && err != io.EOF {
		slog.Error("failed to read header for magic detection", "error", err)
		return r.DetectFormat(filename)
	}
	if n == 0 {
		return r.DetectFormat(filename)
	}

	mime := strings.ToLower(mimetype.Detect(header[:n]).String())
	slog.Debug("magic byte detection result",
		"filename", filename,
		"detected_mime", mime,
		"bytes_analyzed", n)

	var decoder Decoder
	switch {
	case strings.Contains(mime, "wav") || mime == "audio/vnd.wave":
		decoder = r.findByFormat("WAV")
	case strings.Contains(mime, "mpeg") || strings.Contains(mime, "mp3"):
		decoder = r.findByFormat("MP3")
	case strings.Contains(mime, "aiff"):
		decoder = r.findByFormat("AIFF")
	}

	if decoder != nil {
		return decoder
	}
	return r.DetectFormat(filename)
}

// findByFormat looks up a registered decoder by its format name.
func (r *Registry) findByFormat(name string) Decoder {
	for _, decoder := range r.decoders {
		if decoder.FormatName() == name {
			return decoder
		}
	}
	return nil
}
