package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/five82/hudsync/internal/config"
	"github.com/five82/hudsync/internal/dispatch"
	"github.com/five82/hudsync/internal/durable"
	"github.com/five82/hudsync/internal/hud"
	"github.com/five82/hudsync/internal/prefs"
	"github.com/five82/hudsync/internal/state"
	"github.com/five82/hudsync/internal/ui"
)

// Options configure the hudsync application.
type Options struct {
	ConfigPath string // empty uses ~/.config/hudsync/config.toml
	StorageDir string // overrides the configured storage dir when set
	Headless   bool   // run the drivers without the TUI
}

// Run boots hudsync and blocks until the UI exits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.StorageDir != "" {
		if cfg, err = cfg.WithStorageDir(opts.StorageDir); err != nil {
			return err
		}
	}

	logger, closeLog, err := newLogger(cfg, opts.Headless)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Info("hudsync starting",
		zap.String("storage_dir", cfg.StorageDir),
		zap.Duration("urgent_interval", cfg.UrgentInterval),
		zap.Duration("idle_interval", cfg.IdleInterval),
		zap.Bool("headless", opts.Headless),
	)

	docs, err := durable.New(durable.Options{
		Dir:       cfg.StorageDir,
		Documents: prefs.Documents(),
		MaxBytes:  cfg.MaxDocumentBytes,
		Logger:    logger.Named("durable"),
	})
	if err != nil {
		return fmt.Errorf("init durable store: %w", err)
	}

	manager := prefs.NewManager(docs, logger.Named("prefs"))
	store := &state.Store{}
	policy := dispatch.NewAdaptivePolicy(cfg.UrgentInterval, cfg.IdleInterval)
	registry := newRegistry()
	session := hud.NewSession(hud.Options{
		Logger: logger.Named("hud"),
		Prefs:  manager,
		State:  store,
		Dispatch: dispatch.Options{
			Policy:  policy,
			Metrics: dispatch.NewMetrics(registry),
		},
		LevelUpRecheck: cfg.LevelUpRecheck,
		PauseRecheck:   cfg.PauseRecheck,
	})

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		session.Dispatcher().Run(gctx, cfg.TickEvery)
		return nil
	})
	g.Go(func() error {
		session.RunHeartbeat(gctx, cfg.HeartbeatEvery)
		return nil
	})
	g.Go(func() error {
		watchConfig(gctx, opts.ConfigPath, policy, logger.Named("config"))
		return nil
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.MetricsAddr, registry, logger.Named("metrics"))
		})
	}
	StartPoller(gctx, store, session.Dispatcher(), defaultPollInterval)

	g.Go(func() error {
		defer cancel()
		if opts.Headless {
			// Stand in for a host that has finished loading a game.
			session.ViewReady(true)
			session.GameLoaded()
			<-gctx.Done()
			return nil
		}
		return ui.Run(ui.Options{
			Context:   gctx,
			Session:   session,
			Store:     store,
			LogPath:   cfg.LogPath,
			ThemeName: prefs.ThemeOr(manager.LoadSettings(), cfg.Theme),
			Logger:    logger.Named("ui"),
		})
	})

	runErr := g.Wait()
	if err := docs.Close(); err != nil {
		logger.Warn("close durable store", zap.Error(err))
	}
	if runErr != nil {
		logger.Error("hudsync stopped", zap.Error(runErr))
		return runErr
	}
	logger.Info("hudsync stopped")
	return nil
}

// watchConfig applies reloaded throttle intervals to policy. Other settings
// only take effect on restart.
func watchConfig(ctx context.Context, path string, policy *dispatch.AdaptivePolicy, logger *zap.Logger) {
	err := config.Watch(ctx, path, config.DefaultDebounce, logger, func(cfg config.Config) {
		policy.Set(cfg.UrgentInterval, cfg.IdleInterval)
		logger.Info("throttle intervals updated",
			zap.Duration("urgent_interval", cfg.UrgentInterval),
			zap.Duration("idle_interval", cfg.IdleInterval),
		)
	})
	if err != nil && ctx.Err() == nil {
		logger.Warn("config watch unavailable", zap.Error(err))
	}
}
