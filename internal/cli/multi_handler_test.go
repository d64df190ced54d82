package cli

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestMultiLevelHandlerDistributesByLevel(t *testing.T) {
	var warnBuf, debugBuf bytes.Buffer

	warnHandler := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})
	debugHandler := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})

	logger := slog.New(NewMultiLevelHandler(warnHandler, debugHandler))

	logger.Debug("debug message")
	logger.Warn("warn message")

	if strings.Contains(warnBuf.String(), "debug message") {
		t.Error("warn handler should not receive debug records")
	}
	if !strings.Contains(warnBuf.String(), "warn message") {
		t.Error("warn handler should receive warn records")
	}
	if !strings.Contains(debugBuf.String(), "debug message") {
		t.Error("debug handler should receive debug records")
	}
	if !strings.Contains(debugBuf.String(), "warn message") {
		t.Error("debug handler should receive warn records")
	}
}

func TestMultiLevelHandlerEnabled(t *testing.T) {
	var buf bytes.Buffer

	handler := NewMultiLevelHandler(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}),
	)

	ctx := context.Background()
	if handler.Enabled(ctx, slog.LevelDebug) {
		t.Error("expected debug to be disabled when only warn handler present")
	}
	if !handler.Enabled(ctx, slog.LevelError) {
		t.Error("expected error to be enabled")
	}
}

func TestMultiLevelHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer

	handler := NewMultiLevelHandler(
		slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}),
	)

	logger := slog.New(handler.WithAttrs([]slog.Attr{slog.String("component", "test")}))
	logger.Info("message")

	if !strings.Contains(buf.String(), "component=test") {
		t.Errorf("expected attribute in output, got: %s", buf.String())
	}
}
