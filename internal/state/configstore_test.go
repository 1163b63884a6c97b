package state

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/five82/sagtrack/internal/sagapi"
)

type fakeConfigAPI struct {
	stored  sagapi.Configuration
	sent    []sagapi.Configuration
	saveErr error
	// normalize mimics a server that rewrites part of what it receives.
	normalize func(sagapi.Configuration) sagapi.Configuration
}

func (f *fakeConfigAPI) FetchConfig(context.Context) (sagapi.Configuration, error) {
	return f.stored.Clone(), nil
}

func (f *fakeConfigAPI) SaveConfig(_ context.Context, cfg sagapi.Configuration) (sagapi.Configuration, error) {
	if f.saveErr != nil {
		return sagapi.Configuration{}, f.saveErr
	}
	f.sent = append(f.sent, cfg.Clone())
	if f.normalize != nil {
		cfg = f.normalize(cfg)
	}
	f.stored = cfg.Clone()
	return cfg, nil
}

func TestConfigStore_SaveMergesBeforeSend(t *testing.T) {
	api := &fakeConfigAPI{stored: sagapi.Configuration{Front: &sagapi.UnitPref{PreloadUnit: "mm"}}}
	store := NewConfigStore(api, nil)
	if _, err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	candidate := sagapi.Configuration{Markers: map[sagapi.Corner]sagapi.Position{
		sagapi.CornerFL: {Left: "10%", Top: "20%"},
	}}
	saved, err := store.Save(context.Background(), candidate)
	if err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	want := sagapi.Configuration{
		Front:   &sagapi.UnitPref{PreloadUnit: "mm"},
		Markers: map[sagapi.Corner]sagapi.Position{sagapi.CornerFL: {Left: "10%", Top: "20%"}},
	}
	if diff := cmp.Diff(want, api.sent[0]); diff != "" {
		t.Fatalf("sent config mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, saved); diff != "" {
		t.Fatalf("saved config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfigStore_CachesServerResponse(t *testing.T) {
	api := &fakeConfigAPI{normalize: func(c sagapi.Configuration) sagapi.Configuration {
		c.RR = &sagapi.UnitPref{PreloadUnit: "mm", DampingUnit: "clicks"}
		return c
	}}
	store := NewConfigStore(api, nil)

	if _, err := store.Save(context.Background(), sagapi.Configuration{RR: &sagapi.UnitPref{DampingUnit: "turns"}}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := store.DampingUnit(sagapi.CornerRR); got != "clicks" {
		t.Fatalf("DampingUnit(rr) = %q, want server value clicks", got)
	}
}

func TestConfigStore_SaveFailureKeepsCache(t *testing.T) {
	api := &fakeConfigAPI{stored: sagapi.Configuration{RL: &sagapi.UnitPref{PreloadUnit: "turns"}}}
	store := NewConfigStore(api, nil)
	_, _ = store.Load(context.Background())

	api.saveErr = errors.New("offline")
	if _, err := store.Save(context.Background(), sagapi.Configuration{RL: &sagapi.UnitPref{PreloadUnit: "mm"}}); err == nil {
		t.Fatalf("Save returned nil error")
	}
	if got := store.PreloadUnit(sagapi.CornerRL); got != "turns" {
		t.Fatalf("PreloadUnit(rl) = %q, want cached turns", got)
	}
}

func TestConfigStore_CurrentIsDeepCopy(t *testing.T) {
	api := &fakeConfigAPI{stored: sagapi.Configuration{Markers: map[sagapi.Corner]sagapi.Position{sagapi.CornerRR: {Left: "1%", Top: "1%"}}}}
	store := NewConfigStore(api, nil)
	_, _ = store.Load(context.Background())

	cur := store.Current()
	cur.Markers[sagapi.CornerRR] = sagapi.Position{Left: "90%", Top: "90%"}
	if store.Current().Markers[sagapi.CornerRR].Left != "1%" {
		t.Fatalf("Current leaked internal map")
	}
}

func TestMerge(t *testing.T) {
	base := sagapi.Configuration{
		Front:   &sagapi.UnitPref{PreloadUnit: "mm", DampingUnit: "clicks"},
		Markers: map[sagapi.Corner]sagapi.Position{sagapi.CornerFL: {Left: "1%", Top: "2%"}},
		Initial: &sagapi.Snapshot{Notes: "old", Springs: sagapi.Springs{sagapi.CornerFL: {Preload: 1}}},
	}
	patch := sagapi.Configuration{
		Front:   &sagapi.UnitPref{DampingUnit: "turns"},
		Markers: map[sagapi.Corner]sagapi.Position{sagapi.CornerRR: {Left: "50%", Top: "60%"}},
		Initial: &sagapi.Snapshot{Notes: "new"},
	}
	got := Merge(base, patch)
	want := sagapi.Configuration{
		Front: &sagapi.UnitPref{PreloadUnit: "mm", DampingUnit: "turns"},
		Markers: map[sagapi.Corner]sagapi.Position{
			sagapi.CornerFL: {Left: "1%", Top: "2%"},
			sagapi.CornerRR: {Left: "50%", Top: "60%"},
		},
		Initial: &sagapi.Snapshot{Notes: "new"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Merge mismatch (-want +got):\n%s", diff)
	}
	if base.Front.DampingUnit != "clicks" || len(base.Markers) != 1 {
		t.Fatalf("Merge mutated base: %#v", base)
	}
}

func TestGroupFor(t *testing.T) {
	if GroupFor(sagapi.CornerFL) != "front" || GroupFor(sagapi.CornerFR) != "front" {
		t.Fatalf("front corners must share the front group")
	}
	if GroupFor(sagapi.CornerRL) != "rl" || GroupFor(sagapi.CornerRR) != "rr" {
		t.Fatalf("rear corners must be their own group")
	}
}
