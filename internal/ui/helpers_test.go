package ui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/sagtrack/internal/sagapi"
)

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func typeKey(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

// fakeBackend implements the events and config APIs in memory.
type fakeBackend struct {
	mu       sync.Mutex
	events   []sagapi.Event
	cfg      sagapi.Configuration
	saved    []sagapi.Configuration
	comments map[int64][]string
	nextTS   int64
	fetchErr error
}

func (f *fakeBackend) failFetches(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr = err
}

func newFakeBackend(events ...sagapi.Event) *fakeBackend {
	return &fakeBackend{events: events, nextTS: 1_700_000_000, comments: map[int64][]string{}}
}

func (f *fakeBackend) FetchEvents(context.Context) ([]sagapi.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	out := make([]sagapi.Event, len(f.events))
	copy(out, f.events)
	return out, nil
}

func (f *fakeBackend) PostEvent(_ context.Context, p sagapi.EventPayload) (*sagapi.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTS++
	ev := sagapi.Event{TS: f.nextTS, Data: sagapi.EventData{Springs: p.Springs, Notes: p.Notes}}
	f.events = append([]sagapi.Event{ev}, f.events...)
	return &ev, nil
}

func (f *fakeBackend) PostResetSag(_ context.Context, at time.Time) (*sagapi.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ev := sagapi.Event{TS: at.Unix(), Data: sagapi.EventData{Type: sagapi.EventTypeResetSag}}
	f.events = append([]sagapi.Event{ev}, f.events...)
	return &ev, nil
}

func (f *fakeBackend) PostComment(_ context.Context, ts int64, text string) (*sagapi.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments[ts] = append(f.comments[ts], text)
	for i := range f.events {
		if f.events[i].TS == ts {
			f.events[i].Comments = append(f.events[i].Comments, sagapi.Comment{TS: ts + 1, Text: text})
			ev := f.events[i]
			return &ev, nil
		}
	}
	return nil, &sagapi.StatusError{Code: 404}
}

func (f *fakeBackend) FetchConfig(context.Context) (sagapi.Configuration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cfg.Clone(), nil
}

func (f *fakeBackend) SaveConfig(_ context.Context, cfg sagapi.Configuration) (sagapi.Configuration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, cfg.Clone())
	f.cfg = cfg.Clone()
	return f.cfg.Clone(), nil
}
