package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestLevelFromString(t *testing.T) {
	t.Parallel()

	cases := map[string]slog.Level{
		"error":   slog.LevelError,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		" info ":  slog.LevelInfo,
		"":        slog.LevelDebug,
		"trace":   slog.LevelDebug,
	}
	for in, want := range cases {
		if got := levelFromString(in); got != want {
			t.Fatalf("levelFromString(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewWriterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := NewWriter(&buf, "info", "json")
	log.Debug("hidden")
	log.Info("analysis completed", "seed", 42)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %q", buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal log line: %v", err)
	}
	if entry["msg"] != "analysis completed" || entry["seed"] != float64(42) {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewWriterConsole(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	NewWriter(&buf, "warn", "console").Warn("model load failed", "model", "water")
	if !strings.Contains(buf.String(), "model load failed") || !strings.Contains(buf.String(), "water") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
