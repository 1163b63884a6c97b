package mockapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/sagapi"
)

// ErrEventNotFound is returned when a comment targets an unknown event.
var ErrEventNotFound = errors.New("event not found")

// storeFile is the on-disk layout. Events are kept oldest first.
type storeFile struct {
	Events []sagapi.Event  `json:"events"`
	Config map[string]any `json:"config"`
}

// Store holds the mock backend state.
type Store struct {
	path   string
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	events []sagapi.Event
	config map[string]any
}

// OpenStore loads path. A missing file starts empty; an unreadable one is
// logged and also starts empty. An empty path keeps everything in memory.
func OpenStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: strings.TrimSpace(path), logger: logger, now: time.Now, config: map[string]any{}}
	if s.path == "" {
		return s
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("read mock data failed", zap.String("path", s.path), zap.Error(err))
		}
		return s
	}
	var data storeFile
	if err := json.Unmarshal(raw, &data); err != nil {
		logger.Warn("parse mock data failed", zap.String("path", s.path), zap.Error(err))
		return s
	}
	s.events = data.Events
	if data.Config != nil {
		s.config = data.Config
	}
	logger.Info("mock data loaded", zap.String("path", s.path), zap.Int("events", len(s.events)))
	return s
}

// Events returns a copy of the log, newest first.
func (s *Store) Events() []sagapi.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sagapi.Event, 0, len(s.events))
	for i := len(s.events) - 1; i >= 0; i-- {
		out = append(out, s.events[i].Clone())
	}
	return out
}

// AddEvent stamps data with the server time and appends it. Timestamps
// identify events, so they are kept strictly increasing. A returned error
// only reports that the file could not be written; the event is kept.
func (s *Store) AddEvent(data sagapi.EventData) (sagapi.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().Unix()
	if n := len(s.events); n > 0 && s.events[n-1].TS >= ts {
		ts = s.events[n-1].TS + 1
	}
	ev := sagapi.Event{TS: ts, Data: data}
	ev.Data.Springs = ev.Data.Springs.Clone()
	s.events = append(s.events, ev)
	return ev.Clone(), s.persistLocked()
}

// AddComment appends text to the event with timestamp eventTS and returns
// the updated event.
func (s *Store) AddComment(eventTS int64, text string) (sagapi.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.events {
		if s.events[i].TS != eventTS {
			continue
		}
		s.events[i].Comments = append(s.events[i].Comments, sagapi.Comment{TS: s.now().Unix(), Text: text})
		return s.events[i].Clone(), s.persistLocked()
	}
	return sagapi.Event{}, fmt.Errorf("comment on %d: %w", eventTS, ErrEventNotFound)
}

// Config returns a copy of the stored configuration.
func (s *Store) Config() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMap(s.config)
}

// MergeConfig merges patch one level deep: object values update the stored
// object key by key, anything else replaces the stored value.
func (s *Store) MergeConfig(patch map[string]any) (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range patch {
		obj, ok := v.(map[string]any)
		if !ok {
			s.config[k] = cloneValue(v)
			continue
		}
		cur, _ := s.config[k].(map[string]any)
		if cur == nil {
			cur = map[string]any{}
		}
		for ik, iv := range obj {
			cur[ik] = cloneValue(iv)
		}
		s.config[k] = cur
	}
	return cloneMap(s.config), s.persistLocked()
}

// persistLocked writes the store atomically. Callers hold s.mu.
func (s *Store) persistLocked() error {
	if s.path == "" {
		return nil
	}
	raw, err := json.MarshalIndent(storeFile{Events: s.events, Config: s.config}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal mock data: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create mock data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write mock data: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace mock data: %w", err)
	}
	return nil
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
