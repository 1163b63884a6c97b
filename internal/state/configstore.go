package state

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/sagapi"
)

// ConfigAPI is the subset of the backend used by ConfigStore.
type ConfigAPI interface {
	FetchConfig(ctx context.Context) (sagapi.Configuration, error)
	SaveConfig(ctx context.Context, cfg sagapi.Configuration) (sagapi.Configuration, error)
}

// ConfigStore caches the backend configuration. The server response is
// authoritative: after a save the cache holds what the server returned.
type ConfigStore struct {
	api    ConfigAPI
	logger *zap.Logger

	mu     sync.RWMutex
	cfg    sagapi.Configuration
	loaded bool
}

// NewConfigStore builds a ConfigStore. A nil logger disables logging.
func NewConfigStore(api ConfigAPI, logger *zap.Logger) *ConfigStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigStore{api: api, logger: logger}
}

// Load fetches the configuration and replaces the cache.
func (s *ConfigStore) Load(ctx context.Context) (sagapi.Configuration, error) {
	if s == nil || s.api == nil {
		return sagapi.Configuration{}, sagapi.ErrNilClient
	}
	cfg, err := s.api.FetchConfig(ctx)
	if err != nil {
		s.logger.Warn("load config failed", zap.Error(err))
		return sagapi.Configuration{}, fmt.Errorf("load config: %w", err)
	}
	s.mu.Lock()
	s.cfg = cfg.Clone()
	s.loaded = true
	s.mu.Unlock()
	return cfg, nil
}

// Save merges the partial candidate onto the last known configuration, sends
// the result and caches the server response.
func (s *ConfigStore) Save(ctx context.Context, candidate sagapi.Configuration) (sagapi.Configuration, error) {
	if s == nil || s.api == nil {
		return sagapi.Configuration{}, sagapi.ErrNilClient
	}
	merged := Merge(s.Current(), candidate)
	saved, err := s.api.SaveConfig(ctx, merged)
	if err != nil {
		s.logger.Warn("save config failed", zap.Error(err))
		return sagapi.Configuration{}, fmt.Errorf("save config: %w", err)
	}
	s.mu.Lock()
	s.cfg = saved.Clone()
	s.loaded = true
	s.mu.Unlock()
	s.logger.Info("config saved")
	return saved, nil
}

// ResetUnits restores the default units of every group.
func (s *ConfigStore) ResetUnits(ctx context.Context) (sagapi.Configuration, error) {
	return s.Save(ctx, sagapi.DefaultUnits())
}

// Current returns a deep copy of the cached configuration.
func (s *ConfigStore) Current() sagapi.Configuration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// Loaded reports whether the cache has been filled from the server.
func (s *ConfigStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// GroupFor returns the unit group of a corner.
func GroupFor(corner sagapi.Corner) string {
	return corner.Group()
}

// PreloadUnit resolves the cached preload unit of a corner.
func (s *ConfigStore) PreloadUnit(corner sagapi.Corner) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.PreloadUnit(corner)
}

// DampingUnit resolves the cached damping unit of a corner.
func (s *ConfigStore) DampingUnit(corner sagapi.Corner) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.DampingUnit(corner)
}

// Merge overlays the set parts of patch onto base. Unit groups merge per
// field, markers per corner, and the initial snapshot is replaced whole.
func Merge(base, patch sagapi.Configuration) sagapi.Configuration {
	out := base.Clone()
	for _, group := range sagapi.Groups {
		p := patch.Group(group)
		if p == nil {
			continue
		}
		var cur sagapi.UnitPref
		if b := out.Group(group); b != nil {
			cur = *b
		}
		if p.PreloadUnit != "" {
			cur.PreloadUnit = p.PreloadUnit
		}
		if p.DampingUnit != "" {
			cur.DampingUnit = p.DampingUnit
		}
		out = out.SetGroup(group, cur)
	}
	if len(patch.Markers) > 0 {
		if out.Markers == nil {
			out.Markers = make(map[sagapi.Corner]sagapi.Position, len(patch.Markers))
		}
		for corner, pos := range patch.Markers {
			out.Markers[corner] = pos
		}
	}
	if patch.Initial != nil {
		snap := sagapi.Snapshot{Springs: patch.Initial.Springs.Clone(), Notes: patch.Initial.Notes}
		out.Initial = &snap
	}
	return out
}
