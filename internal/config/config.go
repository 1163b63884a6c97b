package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client and mock backend settings.
type Config struct {
	APIBind        string
	LogFile        string
	LiveInterval   time.Duration
	StatusInterval time.Duration
	RequestTimeout time.Duration
	// TravelMM converts a sag percentage to millimetres.
	TravelMM float64

	Mock MockConfig
}

// MockConfig configures `sagtrack mock`.
type MockConfig struct {
	Listen   string
	DataFile string
}

const (
	defaultConfigPath     = "~/.config/sagtrack/config.toml"
	defaultLogFile        = "~/.local/state/sagtrack/sagtrack.log"
	defaultAPIBind        = "127.0.0.1:8000"
	defaultMockListen     = "127.0.0.1:8000"
	defaultMockDataFile   = "~/.local/share/sagtrack/mock.json"
	defaultLiveInterval   = time.Second
	defaultStatusInterval = 5 * time.Second
	defaultRequestTimeout = 3 * time.Second
	defaultTravelMM       = 160
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:        defaultAPIBind,
		LogFile:        mustExpand(defaultLogFile),
		LiveInterval:   defaultLiveInterval,
		StatusInterval: defaultStatusInterval,
		RequestTimeout: defaultRequestTimeout,
		TravelMM:       defaultTravelMM,
		Mock: MockConfig{
			Listen:   defaultMockListen,
			DataFile: mustExpand(defaultMockDataFile),
		},
	}
}

type rawConfig struct {
	APIBind        string  `toml:"api_bind"`
	LogFile        string  `toml:"log_file"`
	LiveInterval   string  `toml:"live_interval"`
	StatusInterval string  `toml:"status_interval"`
	RequestTimeout string  `toml:"request_timeout"`
	TravelMM       float64 `toml:"travel_mm"`
	Mock           struct {
		Listen   string `toml:"listen"`
		DataFile string `toml:"data_file"`
	} `toml:"mock"`
}

// Load parses the TOML file at path (or the default location), falling back
// to defaults for a missing file or empty fields.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIBind); v != "" {
		cfg.APIBind = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if cfg.LiveInterval, err = parseDuration("live_interval", raw.LiveInterval, cfg.LiveInterval); err != nil {
		return Config{}, err
	}
	if cfg.StatusInterval, err = parseDuration("status_interval", raw.StatusInterval, cfg.StatusInterval); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = parseDuration("request_timeout", raw.RequestTimeout, cfg.RequestTimeout); err != nil {
		return Config{}, err
	}
	if raw.TravelMM > 0 {
		cfg.TravelMM = raw.TravelMM
	}
	if v := strings.TrimSpace(raw.Mock.Listen); v != "" {
		cfg.Mock.Listen = v
	}
	if v := strings.TrimSpace(raw.Mock.DataFile); v != "" {
		cfg.Mock.DataFile = mustExpand(v)
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the pollers cannot run with.
func (c Config) Validate() error {
	if c.LiveInterval <= 0 {
		return fmt.Errorf("live_interval must be positive")
	}
	if c.StatusInterval <= 0 {
		return fmt.Errorf("status_interval must be positive")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.TravelMM <= 0 {
		return fmt.Errorf("travel_mm must be positive")
	}
	return nil
}

// ExpandPath resolves a leading ~ and makes the path absolute. Invalid input
// is returned unchanged.
func ExpandPath(path string) string {
	return mustExpand(path)
}

func parseDuration(key, value string, fallback time.Duration) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
