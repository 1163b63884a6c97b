package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	wantLog, err := expandPath(defaultLogFile)
	if err != nil {
		t.Fatalf("expandPath(defaultLogFile) returned error: %v", err)
	}
	if cfg.LogFile != wantLog {
		t.Fatalf("LogFile = %q, want %q", cfg.LogFile, wantLog)
	}
	if cfg.LiveInterval != time.Second || cfg.StatusInterval != 5*time.Second {
		t.Fatalf("intervals = %v/%v, want 1s/5s", cfg.LiveInterval, cfg.StatusInterval)
	}
	if cfg.TravelMM != 160 {
		t.Fatalf("TravelMM = %v, want 160", cfg.TravelMM)
	}
	if !strings.HasPrefix(cfg.Mock.DataFile, home) {
		t.Fatalf("Mock.DataFile = %q, want it under HOME", cfg.Mock.DataFile)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := writeConfig(t, `
api_bind = "  10.0.0.5:9999  "
log_file = "  ~/logs/sag.log  "
live_interval = "500ms"
status_interval = "10s"
request_timeout = "2s"
travel_mm = 150

[mock]
listen = ":9000"
data_file = "~/mock.json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != "10.0.0.5:9999" {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, "10.0.0.5:9999")
	}
	if cfg.LogFile != filepath.Join(home, "logs/sag.log") {
		t.Fatalf("LogFile = %q, want it under HOME %q", cfg.LogFile, home)
	}
	if cfg.LiveInterval != 500*time.Millisecond || cfg.StatusInterval != 10*time.Second || cfg.RequestTimeout != 2*time.Second {
		t.Fatalf("durations = %v %v %v", cfg.LiveInterval, cfg.StatusInterval, cfg.RequestTimeout)
	}
	if cfg.TravelMM != 150 {
		t.Fatalf("TravelMM = %v, want 150", cfg.TravelMM)
	}
	if cfg.Mock.Listen != ":9000" || cfg.Mock.DataFile != filepath.Join(home, "mock.json") {
		t.Fatalf("Mock = %#v", cfg.Mock)
	}
}

func TestLoad_EmptyValuesUseDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(writeConfig(t, `
api_bind = "   "
log_file = ""
live_interval = ""
`))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.APIBind != defaultAPIBind {
		t.Fatalf("APIBind = %q, want %q", cfg.APIBind, defaultAPIBind)
	}
	if cfg.LiveInterval != defaultLiveInterval {
		t.Fatalf("LiveInterval = %v, want default", cfg.LiveInterval)
	}
}

func TestLoad_InvalidValuesFail(t *testing.T) {
	cases := map[string]string{
		"parse config":    `api_bind = [`,
		"live_interval":   `live_interval = "soon"`,
		"status_interval": `status_interval = "-5s"`,
	}
	for want, body := range cases {
		_, err := Load(writeConfig(t, body))
		if err == nil {
			t.Fatalf("Load(%q) returned nil error", body)
		}
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("Load(%q) error = %q, want it to mention %s", body, err.Error(), want)
		}
	}
}

func TestExpandPath_ExpandsTildeAndReturnsAbs(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := expandPath("~/a/b")
	if err != nil {
		t.Fatalf("expandPath returned error: %v", err)
	}
	if want := filepath.Join(home, "a/b"); got != want {
		t.Fatalf("expandPath = %q, want %q", got, want)
	}
	if _, err := expandPath("   "); err == nil {
		t.Fatalf("expandPath returned nil error, want error")
	}
}
