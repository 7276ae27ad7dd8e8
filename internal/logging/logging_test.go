package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"chatty", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tt.in, tt.want, got)
		}
	}
}

func TestNewFiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "warn")
	logger.Info().Msg("hidden")
	logger.Warn().Str("host", "example.com").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output, got %q", lines[0])
	}
	if entry["message"] != "shown" || entry["host"] != "example.com" {
		t.Errorf("Unexpected entry: %v", entry)
	}
	if _, ok := entry["time"]; !ok {
		t.Error("Expected a timestamp")
	}
}

func TestOpenFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SXTX_LOG", "")

	f, err := OpenFile("", filepath.Join(dir, "cfg"))
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	f.Close()
	if _, err := os.Stat(filepath.Join(dir, "cfg", DefaultFileName)); err != nil {
		t.Errorf("Expected default log file to exist: %v", err)
	}

	envPath := filepath.Join(dir, "env", "custom.log")
	t.Setenv("SXTX_LOG", envPath)
	f, err = OpenFile("", dir)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	f.Close()
	if _, err := os.Stat(envPath); err != nil {
		t.Errorf("Expected $SXTX_LOG file to exist: %v", err)
	}
}
