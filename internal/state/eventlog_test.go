package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/sagtrack/internal/sagapi"
)

type fakeEventsAPI struct {
	events    []sagapi.Event
	fetchErr  error
	postErr   error
	posted    []sagapi.EventPayload
	resets    []time.Time
	comments  []string
	fetches   int
	commentAt int64
}

func (f *fakeEventsAPI) FetchEvents(context.Context) ([]sagapi.Event, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.events, nil
}

func (f *fakeEventsAPI) PostEvent(_ context.Context, p sagapi.EventPayload) (*sagapi.Event, error) {
	if f.postErr != nil {
		return nil, f.postErr
	}
	f.posted = append(f.posted, p)
	ev := sagapi.Event{TS: int64(1000 + len(f.posted)), Data: sagapi.EventData{Springs: p.Springs, Notes: p.Notes}}
	f.events = append([]sagapi.Event{ev}, f.events...)
	return &ev, nil
}

func (f *fakeEventsAPI) PostResetSag(_ context.Context, at time.Time) (*sagapi.Event, error) {
	f.resets = append(f.resets, at)
	ev := sagapi.Event{TS: at.Unix(), Data: sagapi.EventData{Type: sagapi.EventTypeResetSag, TS: at.Unix()}}
	f.events = append([]sagapi.Event{ev}, f.events...)
	return &ev, nil
}

func (f *fakeEventsAPI) PostComment(_ context.Context, ts int64, text string) (*sagapi.Event, error) {
	f.comments = append(f.comments, text)
	f.commentAt = ts
	// The server stamps its own time and may normalize the text.
	return &sagapi.Event{TS: ts, Comments: []sagapi.Comment{
		{TS: 1, Text: "older"},
		{TS: 777, Text: "server: " + text},
	}}, nil
}

func TestEventLog_LoadReplacesAndKeepsOnFailure(t *testing.T) {
	api := &fakeEventsAPI{events: []sagapi.Event{{TS: 200}, {TS: 100}}}
	log := NewEventLog(api, nil)

	if _, err := log.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if got := len(log.Events()); got != 2 {
		t.Fatalf("events = %d, want 2", got)
	}

	api.fetchErr = errors.New("offline")
	if _, err := log.Load(context.Background()); err == nil {
		t.Fatalf("Load returned nil error, want failure")
	}
	if got := len(log.Events()); got != 2 {
		t.Fatalf("failed load mutated log: %d events", got)
	}
	if !log.Failed() || !errors.Is(log.LastError(), api.fetchErr) {
		t.Fatalf("failure not recorded: %v", log.LastError())
	}

	api.fetchErr = nil
	api.events = nil
	if _, err := log.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if log.Failed() || len(log.Events()) != 0 || !log.Loaded() {
		t.Fatalf("empty log should load cleanly")
	}
}

func TestEventLog_CurrentSettings(t *testing.T) {
	initial := &sagapi.Snapshot{Springs: sagapi.Springs{sagapi.CornerFL: {Preload: 1}}}
	newest := sagapi.Springs{sagapi.CornerFL: {Preload: 12}}

	api := &fakeEventsAPI{events: []sagapi.Event{
		{TS: 2, Data: sagapi.EventData{Springs: newest}},
		{TS: 1, Data: sagapi.EventData{Springs: sagapi.Springs{sagapi.CornerFL: {Preload: 9}}}},
	}}
	log := NewEventLog(api, nil)
	_, _ = log.Load(context.Background())

	springs, src := log.CurrentSettings(initial)
	if src != SourceEvent {
		t.Fatalf("source = %s, want event", src)
	}
	if diff := cmp.Diff(newest, springs); diff != "" {
		t.Fatalf("springs mismatch (-want +got):\n%s", diff)
	}

	empty := NewEventLog(&fakeEventsAPI{}, nil)
	_, _ = empty.Load(context.Background())
	springs, src = empty.CurrentSettings(initial)
	if src != SourceInitial || springs[sagapi.CornerFL].Preload != 1 {
		t.Fatalf("CurrentSettings = %#v, %s; want initial", springs, src)
	}
	if springs, src = empty.CurrentSettings(nil); src != SourceNone || springs != nil {
		t.Fatalf("CurrentSettings = %#v, %s; want none", springs, src)
	}
}

func TestEventLog_AppendReloads(t *testing.T) {
	api := &fakeEventsAPI{events: []sagapi.Event{{TS: 100}}}
	log := NewEventLog(api, nil)
	_, _ = log.Load(context.Background())

	payload := sagapi.EventPayload{Springs: sagapi.Springs{sagapi.CornerRR: {Rebound: 4}}, Notes: "stiffer"}
	if err := log.Append(context.Background(), payload); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	events := log.Events()
	if len(events) != 2 || events[0].Data.Notes != "stiffer" {
		t.Fatalf("events after append = %#v", events)
	}
	if api.fetches != 2 {
		t.Fatalf("fetches = %d, want 2 (load + reload)", api.fetches)
	}

	at := time.Unix(1700000000, 0)
	if err := log.ResetSag(context.Background(), at); err != nil {
		t.Fatalf("ResetSag returned error: %v", err)
	}
	if !log.Events()[0].IsResetSag() || len(api.resets) != 1 {
		t.Fatalf("reset event not recorded: %#v", log.Events()[0])
	}
}

func TestEventLog_AppendFailureSkipsReload(t *testing.T) {
	api := &fakeEventsAPI{postErr: errors.New("500")}
	log := NewEventLog(api, nil)
	if err := log.Append(context.Background(), sagapi.EventPayload{}); err == nil {
		t.Fatalf("Append returned nil error")
	}
	if api.fetches != 0 {
		t.Fatalf("fetches = %d, want 0", api.fetches)
	}
}

func TestEventLog_ReloadFailureAfterWriteIsDistinct(t *testing.T) {
	api := &fakeEventsAPI{fetchErr: errors.New("offline")}
	log := NewEventLog(api, nil)
	ctx := context.Background()

	err := log.Append(ctx, sagapi.EventPayload{Notes: "n"})
	if !errors.Is(err, ErrReloadFailed) || !errors.Is(err, api.fetchErr) {
		t.Fatalf("Append err = %v, want ErrReloadFailed wrapping the fetch error", err)
	}
	if len(api.posted) != 1 {
		t.Fatalf("posted = %d, want 1", len(api.posted))
	}

	err = log.ResetSag(ctx, time.Unix(50, 0))
	if !errors.Is(err, ErrReloadFailed) {
		t.Fatalf("ResetSag err = %v, want ErrReloadFailed", err)
	}

	api.postErr = errors.New("refused")
	if err := log.Append(ctx, sagapi.EventPayload{}); err == nil || errors.Is(err, ErrReloadFailed) {
		t.Fatalf("failed post err = %v, want a plain write error", err)
	}

	api.fetchErr = nil
	if err := log.Reload(ctx); err != nil || log.Failed() {
		t.Fatalf("Reload = %v, failed=%v", err, log.Failed())
	}
}

func TestEventLog_AddComment(t *testing.T) {
	api := &fakeEventsAPI{events: []sagapi.Event{{TS: 100}}}
	log := NewEventLog(api, nil)
	_, _ = log.Load(context.Background())

	if _, err := log.AddComment(context.Background(), 100, "  "); !errors.Is(err, ErrEmptyComment) {
		t.Fatalf("err = %v, want ErrEmptyComment", err)
	}
	if len(api.comments) != 0 {
		t.Fatalf("whitespace comment reached the server")
	}
	if ev, _ := log.Find(100); len(ev.Comments) != 0 {
		t.Fatalf("whitespace comment mutated the thread")
	}

	if _, err := log.AddComment(context.Background(), 5, "hi"); !errors.Is(err, ErrNoEvent) {
		t.Fatalf("err = %v, want ErrNoEvent", err)
	}

	saved, err := log.AddComment(context.Background(), 100, " sagged 30% ")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	want := sagapi.Comment{TS: 777, Text: "server: sagged 30%"}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Fatalf("saved comment mismatch (-want +got):\n%s", diff)
	}
	ev, _ := log.Find(100)
	if diff := cmp.Diff([]sagapi.Comment{want}, ev.Comments); diff != "" {
		t.Fatalf("thread mismatch (-want +got):\n%s", diff)
	}
}
