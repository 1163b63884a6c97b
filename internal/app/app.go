package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/five82/sagtrack/internal/config"
	"github.com/five82/sagtrack/internal/logging"
	"github.com/five82/sagtrack/internal/prefs"
	"github.com/five82/sagtrack/internal/sagapi"
	"github.com/five82/sagtrack/internal/state"
	"github.com/five82/sagtrack/internal/ui"
)

// Options configure the sagtrack TUI.
type Options struct {
	Config    config.Config
	PrefsPath string // empty uses default ~/.config/sagtrack/prefs.toml
	Lang      string // overrides the language stored in prefs
	Logger    *zap.Logger
}

// Run starts the pollers and the TUI, and blocks until the user quits or the
// context is cancelled. An unreachable backend is not an error: the UI shows
// it as offline and keeps polling.
func Run(ctx context.Context, opts Options) error {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		logger.Warn("load prefs failed", zap.Error(err))
	}

	client, err := sagapi.NewClient(cfg.APIBind, cfg.RequestTimeout)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	logger.Info("starting", zap.String("api", client.BaseURL()))

	store := &state.Store{}
	events := state.NewEventLog(client, logger.Named(logging.Events))
	configStore := state.NewConfigStore(client, logger.Named(logging.Config))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	StartPollers(ctx, store, client, PollerOptions{
		LiveInterval:   cfg.LiveInterval,
		StatusInterval: cfg.StatusInterval,
		Logger:         logger.Named(logging.Poller),
	})

	lang := opts.Lang
	if lang == "" {
		lang = userPrefs.Language()
	}

	return ui.Run(ui.Options{
		Context:   ctx,
		Store:     store,
		Events:    events,
		Config:    configStore,
		Logger:    logger.Named(logging.UI),
		LogFile:   cfg.LogFile,
		TravelMM:  cfg.TravelMM,
		PollTick:  cfg.LiveInterval,
		ThemeName: userPrefs.Theme,
		Lang:      lang,
		PrefsPath: opts.PrefsPath,
	})
}
