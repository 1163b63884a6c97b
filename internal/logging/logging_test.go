package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sagtrack.log")

	logger, err := New(Options{File: path})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Named(Poller).Info("live poll failed")
	logger.Named(Poller).Debug("hidden at info level")
	_ = logger.Sync()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1 (debug filtered): %q", len(lines), raw)
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("entry is not JSON: %v", err)
	}
	if entry["logger"] != Poller || entry["msg"] != "live poll failed" || entry["level"] != "info" {
		t.Fatalf("entry = %#v", entry)
	}
	if _, ok := entry["ts"].(string); !ok {
		t.Fatalf("ts should be an ISO8601 string: %#v", entry["ts"])
	}
}

func TestNew_DebugLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := New(Options{File: path, Debug: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Debug("visible")
	_ = logger.Sync()

	raw, _ := os.ReadFile(path)
	if !strings.Contains(string(raw), "visible") {
		t.Fatalf("debug entry missing: %q", raw)
	}
}

func TestNew_NoOutputsIsNop(t *testing.T) {
	logger, err := New(Options{})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("dropped")
}
