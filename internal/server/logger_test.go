package server

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "json")

	logger.Debug().Msg("hidden")
	logger.Info().Str("room", "abc123").Msg("chat created")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected one line at info level, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if entry["room"] != "abc123" || entry["message"] != "chat created" || entry["service"] != "roomrelay" {
		t.Errorf("Unexpected log entry %v", entry)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
	}{
		{level: "debug", wantDebug: true},
		{level: "DEBUG", wantDebug: true},
		{level: "warn", wantDebug: false},
		{level: "", wantDebug: false},
		{level: "chatty", wantDebug: false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogger(&buf, tt.level, "json")
			logger.Debug().Msg("debug line")
			if got := buf.Len() > 0; got != tt.wantDebug {
				t.Errorf("debug output = %v, want %v", got, tt.wantDebug)
			}
		})
	}
}

func TestNewLoggerConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "info", "console")
	logger.Info().Msg("server listening")

	out := buf.String()
	if !strings.Contains(out, "server listening") || strings.HasPrefix(out, "{") {
		t.Errorf("Expected human-readable output, got %q", out)
	}
}
