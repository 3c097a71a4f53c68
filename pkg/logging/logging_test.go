package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewHandler(&buf, slog.LevelInfo, "json"))
	logger.Debug("hidden")
	logger.Info("Game created", "game_id", "g1")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("output is not one JSON record: %v\n%s", err, buf.String())
	}
	if record["msg"] != "Game created" || record["game_id"] != "g1" {
		t.Errorf("record = %v", record)
	}

	buf.Reset()
	slog.New(NewHandler(&buf, slog.LevelInfo, "text")).Info("Game created", "game_id", "g1")
	if !strings.Contains(buf.String(), "game_id=g1") {
		t.Errorf("text output = %q", buf.String())
	}
}
