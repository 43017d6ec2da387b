package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events editors emit on save.
const DefaultDebounce = 200 * time.Millisecond

// Watch reloads the config whenever the file at path changes and hands the
// new value to onChange. It watches the parent directory so that editors
// replacing the file by rename are still seen. Reloads that fail to parse or
// validate are logged and skipped. Watch blocks until ctx is done.
func Watch(ctx context.Context, path string, debounce time.Duration, logger *zap.Logger, onChange func(Config)) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	resolved, err := ResolvePath(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	dir := filepath.Dir(resolved)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch config dir %s: %w", dir, err)
	}
	logger.Debug("watching config", zap.String("path", resolved))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != resolved {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("config watcher error", zap.Error(err))

		case <-timer.C:
			cfg, err := Load(resolved)
			if err != nil {
				logger.Warn("config reload rejected", zap.String("path", resolved), zap.Error(err))
				continue
			}
			logger.Info("config reloaded", zap.String("path", resolved))
			onChange(cfg)
		}
	}
}
