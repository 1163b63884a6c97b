package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
)

const (
	defaultLiveInterval   = time.Second
	defaultStatusInterval = 5 * time.Second
)

// TelemetrySource is the read side the pollers need.
type TelemetrySource interface {
	FetchStatus(ctx context.Context) (*sagapi.StatusResponse, error)
	FetchLive(ctx context.Context) (*sagapi.LiveSample, error)
}

// PollerOptions configure StartPollers.
type PollerOptions struct {
	LiveInterval   time.Duration
	StatusInterval time.Duration
	Logger         *zap.Logger
}

// StartPollers launches the live and status pollers. Each runs in its own
// goroutine and finishes one fetch before waiting for the next tick, so
// responses of one poller never resolve out of order. It returns immediately.
func StartPollers(ctx context.Context, store *state.Store, source TelemetrySource, opts PollerOptions) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	live := opts.LiveInterval
	if live <= 0 {
		live = defaultLiveInterval
	}
	status := opts.StatusInterval
	if status <= 0 {
		status = defaultStatusInterval
	}

	go poll(ctx, live, func() { refreshLive(ctx, store, source, logger) })
	go poll(ctx, status, func() { refreshStatus(ctx, store, source, logger) })
}

func poll(ctx context.Context, interval time.Duration, refresh func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		refresh()
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func refreshLive(ctx context.Context, store *state.Store, source TelemetrySource, logger *zap.Logger) {
	sample, err := source.FetchLive(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	store.UpdateLive(sample, err)
	if err != nil {
		logger.Warn("live poll failed", zap.Error(err))
	}
}

func refreshStatus(ctx context.Context, store *state.Store, source TelemetrySource, logger *zap.Logger) {
	status, err := source.FetchStatus(ctx)
	if err != nil && ctx.Err() != nil {
		return
	}
	store.UpdateStatus(status, err)
	if err != nil {
		logger.Warn("status poll failed", zap.Error(err))
	}
}
