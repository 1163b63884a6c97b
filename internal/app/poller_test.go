package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

type fakeSource struct {
	mu        sync.Mutex
	statusErr error
	liveErr   error
	status    int
	live      int
}

func (f *fakeSource) FetchStatus(context.Context) (*sagapi.StatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status++
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &sagapi.StatusResponse{Message: "Ready"}, nil
}

func (f *fakeSource) FetchLive(context.Context) (*sagapi.LiveSample, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.live++
	if f.liveErr != nil {
		return nil, f.liveErr
	}
	v := 20.0
	return &sagapi.LiveSample{T: float64(f.live), RR: &v}, nil
}

func (f *fakeSource) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.live, f.status
}

func nopLogger() *zap.Logger { return zap.NewNop() }

func TestRefresh_FailureSemantics(t *testing.T) {
	ctx := context.Background()
	store := &state.Store{}
	src := &fakeSource{}

	refreshLive(ctx, store, src, nopLogger())
	refreshStatus(ctx, store, src, nopLogger())
	snap := store.Snapshot()
	if snap.Live == nil || !snap.HasStatus {
		t.Fatalf("snapshot = %#v, want live and status", snap)
	}

	src.liveErr = errors.New("timeout")
	src.statusErr = errors.New("refused")
	refreshLive(ctx, store, src, nopLogger())
	refreshStatus(ctx, store, src, nopLogger())

	snap = store.Snapshot()
	if snap.Live != nil {
		t.Fatalf("live sample kept after failure: %#v", snap.Live)
	}
	if snap.Status.Message != "Ready" || !snap.IsOffline() {
		t.Fatalf("status = %#v offline=%v, want kept and offline", snap.Status, snap.IsOffline())
	}
}

func TestStartPollers_RunsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := &state.Store{}
	src := &fakeSource{}

	StartPollers(ctx, store, src, PollerOptions{LiveInterval: 10 * time.Millisecond, StatusInterval: 20 * time.Millisecond})

	deadline := time.Now().Add(2 * time.Second)
	for {
		live, status := src.counts()
		if live >= 3 && status >= 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("pollers too slow: live=%d status=%d", live, status)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	time.Sleep(50 * time.Millisecond)
	live, status := src.counts()
	time.Sleep(100 * time.Millisecond)
	live2, status2 := src.counts()
	if live2 != live || status2 != status {
		t.Fatalf("pollers still running after cancel: %d->%d, %d->%d", live, live2, status, status2)
	}
}
