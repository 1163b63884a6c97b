// Package i18n provides the fi/en string tables used by the UI and CLI.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

//go:embed locales/*.json
var locales embed.FS

// Translator looks up strings for one language.
type Translator struct {
	lang string
	dict map[string]string
}

// Supported lists the embedded languages.
var Supported = []string{"fi", "en"}

// New loads the table for lang. Unsupported languages are an error.
func New(lang string) (*Translator, error) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !lo.Contains(Supported, lang) {
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
	raw, err := locales.ReadFile("locales/" + lang + ".json")
	if err != nil {
		return nil, fmt.Errorf("read locale %s: %w", lang, err)
	}
	dict := map[string]string{}
	if err := json.Unmarshal(raw, &dict); err != nil {
		return nil, fmt.Errorf("parse locale %s: %w", lang, err)
	}
	return &Translator{lang: lang, dict: dict}, nil
}

// MustNew is New for languages known to be embedded. It falls back to an
// empty table, so T returns keys, instead of panicking.
func MustNew(lang string) *Translator {
	tr, err := New(lang)
	if err != nil {
		return &Translator{lang: lang, dict: map[string]string{}}
	}
	return tr
}

// Lang returns the language code.
func (t *Translator) Lang() string {
	if t == nil {
		return ""
	}
	return t.lang
}

// T returns the translation of key, or key itself when missing.
func (t *Translator) T(key string) string {
	if t == nil {
		return key
	}
	if v, ok := t.dict[key]; ok {
		return v
	}
	return key
}

// Tf formats the translation of key with args.
func (t *Translator) Tf(key string, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// Unit returns the display label of a unit, e.g. "mm" or "naksua". Units
// without a translation are shown as entered.
func (t *Translator) Unit(unit string) string {
	if label := t.T("unit." + unit); label != "unit."+unit {
		return label
	}
	return unit
}

// Next returns the language after the current one, for toggling.
func (t *Translator) Next() string {
	idx := lo.IndexOf(Supported, t.Lang())
	return Supported[(idx+1)%len(Supported)]
}
