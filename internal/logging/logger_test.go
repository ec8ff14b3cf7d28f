package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl))

	logger.Info("job finished", "job", "abc", "size", 1234, "path", "/out/My Movie.mkv")

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Fatalf("missing level: %q", line)
	}
	if !strings.Contains(line, "job finished") {
		t.Fatalf("missing message: %q", line)
	}
	if !strings.Contains(line, "job=abc") || !strings.Contains(line, "size=1234") {
		t.Fatalf("missing attrs: %q", line)
	}
	// Values containing spaces are quoted.
	if !strings.Contains(line, `path="/out/My Movie.mkv"`) {
		t.Fatalf("path not quoted: %q", line)
	}
}

func TestConsoleHandlerGroupsAndWith(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl)).With("session", "s1").WithGroup("mux")

	logger.Warn("fallback", "reason", "no-edits")

	line := buf.String()
	if !strings.Contains(line, "session=s1") {
		t.Fatalf("missing inherited attr: %q", line)
	}
	if !strings.Contains(line, "mux.reason=no-edits") {
		t.Fatalf("missing grouped attr: %q", line)
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelWarn)
	handler := newConsoleHandler(&buf, lvl)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info must be gated at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error must pass at warn level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bizarre": slog.LevelInfo,
	}
	for input, want := range tests {
		if got := parseLevel(input); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
