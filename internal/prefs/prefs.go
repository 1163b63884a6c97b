// Package prefs handles sagtrack user preferences persistence.
// Preferences are stored in ~/.config/sagtrack/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"
)

// Prefs holds user preferences.
type Prefs struct {
	Theme string `toml:"theme"`
	Lang  string `toml:"lang,omitempty"`
}

const (
	defaultPrefsPath = "~/.config/sagtrack/prefs.toml"
	defaultTheme     = "Nightfox"
	// DefaultLang is used when neither the prefs nor the locale name a supported language.
	DefaultLang = "fi"
)

// SupportedLangs lists the UI languages.
var SupportedLangs = []string{"fi", "en"}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	prefs := Prefs{Theme: defaultTheme}

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs, nil
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Prefs{Theme: defaultTheme}, nil // Graceful degradation
	}

	if strings.TrimSpace(prefs.Theme) == "" {
		prefs.Theme = defaultTheme
	}
	prefs.Lang = strings.ToLower(strings.TrimSpace(prefs.Lang))
	if !lo.Contains(SupportedLangs, prefs.Lang) {
		prefs.Lang = ""
	}

	return prefs, nil
}

// Language resolves the UI language: the stored preference, then the locale
// environment, then DefaultLang.
func (p Prefs) Language() string {
	if lo.Contains(SupportedLangs, p.Lang) {
		return p.Lang
	}
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		value := strings.TrimSpace(os.Getenv(key))
		if len(value) < 2 {
			continue
		}
		code := strings.ToLower(value[:2])
		if lo.Contains(SupportedLangs, code) {
			return code
		}
	}
	return DefaultLang
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
