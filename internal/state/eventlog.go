package state

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/sagapi"
)

var (
	// ErrEmptyComment is returned for blank comment text. No request is made.
	ErrEmptyComment = errors.New("comment is empty")
	// ErrNoEvent is returned when a comment targets an event not in the log.
	ErrNoEvent = errors.New("no event with that timestamp")
	// ErrReloadFailed is returned when a write was accepted but the reload
	// that follows it failed. The write must not be repeated.
	ErrReloadFailed = errors.New("saved, but reloading events failed")
)

// EventsAPI is the subset of the backend used by EventLog.
type EventsAPI interface {
	FetchEvents(ctx context.Context) ([]sagapi.Event, error)
	PostEvent(ctx context.Context, payload sagapi.EventPayload) (*sagapi.Event, error)
	PostResetSag(ctx context.Context, at time.Time) (*sagapi.Event, error)
	PostComment(ctx context.Context, eventTS int64, text string) (*sagapi.Event, error)
}

// Source tells where CurrentSettings found its springs.
type Source int

const (
	SourceNone Source = iota
	SourceEvent
	SourceInitial
)

func (s Source) String() string {
	switch s {
	case SourceEvent:
		return "event"
	case SourceInitial:
		return "initial"
	}
	return "none"
}

// EventLog caches the newest-first event history.
type EventLog struct {
	api    EventsAPI
	logger *zap.Logger

	mu       sync.RWMutex
	events   []sagapi.Event
	loaded   bool
	loadedAt time.Time
	lastErr  error
}

// NewEventLog builds an EventLog. A nil logger disables logging.
func NewEventLog(api EventsAPI, logger *zap.Logger) *EventLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventLog{api: api, logger: logger}
}

// Load fetches the whole log and replaces the cache. On failure the previous
// log is kept and the error is recorded.
func (l *EventLog) Load(ctx context.Context) ([]sagapi.Event, error) {
	if l == nil || l.api == nil {
		return nil, sagapi.ErrNilClient
	}
	events, err := l.api.FetchEvents(ctx)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err != nil {
		l.lastErr = err
		l.logger.Warn("load events failed", zap.Error(err))
		return nil, fmt.Errorf("load events: %w", err)
	}
	l.events = cloneEvents(events)
	l.loaded = true
	l.loadedAt = time.Now()
	l.lastErr = nil
	l.logger.Debug("events loaded", zap.Int("count", len(events)))
	return cloneEvents(l.events), nil
}

// Events returns a copy of the cached log.
func (l *EventLog) Events() []sagapi.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneEvents(l.events)
}

// Loaded reports whether at least one load succeeded.
func (l *EventLog) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loaded
}

// LastError returns the error of the most recent load, or nil.
func (l *EventLog) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// Failed reports whether the most recent load failed. Renderers use it to
// tell an unreachable backend apart from an empty log.
func (l *EventLog) Failed() bool {
	return l.LastError() != nil
}

// CurrentSettings returns the newest event's springs, falling back to the
// initial snapshot when the log is empty.
func (l *EventLog) CurrentSettings(initial *sagapi.Snapshot) (sagapi.Springs, Source) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) > 0 {
		return l.events[0].Data.Springs.Clone(), SourceEvent
	}
	if initial != nil && initial.Springs != nil {
		return initial.Springs.Clone(), SourceInitial
	}
	return nil, SourceNone
}

// Append records a settings event and reloads the log before returning.
func (l *EventLog) Append(ctx context.Context, payload sagapi.EventPayload) error {
	if l == nil || l.api == nil {
		return sagapi.ErrNilClient
	}
	if _, err := l.api.PostEvent(ctx, payload); err != nil {
		l.logger.Warn("post event failed", zap.Error(err))
		return fmt.Errorf("post event: %w", err)
	}
	l.logger.Info("event recorded", zap.Int("corners", len(payload.Springs)))
	return l.reload(ctx)
}

// ResetSag records a sag reset marker and reloads the log.
func (l *EventLog) ResetSag(ctx context.Context, at time.Time) error {
	if l == nil || l.api == nil {
		return sagapi.ErrNilClient
	}
	if _, err := l.api.PostResetSag(ctx, at); err != nil {
		l.logger.Warn("reset sag failed", zap.Error(err))
		return fmt.Errorf("reset sag: %w", err)
	}
	l.logger.Info("sag reset recorded", zap.Int64("ts", at.Unix()))
	return l.reload(ctx)
}

// Reload refreshes the log after a write made elsewhere. A failure is
// reported as ErrReloadFailed.
func (l *EventLog) Reload(ctx context.Context) error {
	return l.reload(ctx)
}

func (l *EventLog) reload(ctx context.Context) error {
	if _, err := l.Load(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrReloadFailed, err)
	}
	return nil
}

// AddComment posts text to the event with timestamp eventTS. Only the
// comment returned by the server is appended to the cached event.
func (l *EventLog) AddComment(ctx context.Context, eventTS int64, text string) (sagapi.Comment, error) {
	if l == nil || l.api == nil {
		return sagapi.Comment{}, sagapi.ErrNilClient
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return sagapi.Comment{}, ErrEmptyComment
	}
	if l.indexOf(eventTS) < 0 {
		return sagapi.Comment{}, fmt.Errorf("comment on %d: %w", eventTS, ErrNoEvent)
	}

	updated, err := l.api.PostComment(ctx, eventTS, text)
	if err != nil {
		l.logger.Warn("post comment failed", zap.Int64("event_ts", eventTS), zap.Error(err))
		return sagapi.Comment{}, fmt.Errorf("post comment: %w", err)
	}
	if updated == nil || len(updated.Comments) == 0 {
		return sagapi.Comment{}, fmt.Errorf("post comment: response has no comments")
	}
	saved := updated.Comments[len(updated.Comments)-1]

	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.events {
		if l.events[i].TS == eventTS {
			l.events[i].Comments = append(l.events[i].Comments, saved)
			break
		}
	}
	l.logger.Info("comment added", zap.Int64("event_ts", eventTS))
	return saved, nil
}

// Find returns a copy of the event with timestamp ts.
func (l *EventLog) Find(ts int64) (sagapi.Event, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ev := range l.events {
		if ev.TS == ts {
			return ev.Clone(), true
		}
	}
	return sagapi.Event{}, false
}

func (l *EventLog) indexOf(ts int64) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for i, ev := range l.events {
		if ev.TS == ts {
			return i
		}
	}
	return -1
}

func cloneEvents(events []sagapi.Event) []sagapi.Event {
	if len(events) == 0 {
		return nil
	}
	dup := make([]sagapi.Event, len(events))
	for i, ev := range events {
		dup[i] = ev.Clone()
	}
	return dup
}
