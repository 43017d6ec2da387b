// Package app is the composition root of hudsync.
//
// # Overview
//
// Run loads configuration, opens the log file, builds the durable store and
// the HUD session, starts the background drivers and then hands the terminal
// to the UI. Everything shuts down when the UI exits or the context is
// cancelled.
//
// # Startup Order
//
//  1. config.Load, then the -storage override
//  2. newLogger writes to cfg.LogPath (stderr too when headless)
//  3. durable.New with the settings and preset documents
//  4. prefs.Manager, state.Store, AdaptivePolicy and prometheus registry
//  5. hud.NewSession, which owns a disabled Dispatcher
//  6. errgroup: dispatcher Tick driver, heartbeat, config watcher and the
//     optional /metrics server
//  7. StartPoller mirrors dispatcher counters into the store
//  8. ui.Run, or a headless wait with a game already loaded
//
// # Shutdown
//
// The UI goroutine cancels the group on return. After every driver has
// stopped the durable store is closed, which flushes queued saves, and the
// logger is synced.
//
// # Live Reload
//
// Only the throttle intervals follow config file edits. Invalid edits are
// logged and ignored by config.Watch.
//
// # Components
//
//   - app.go: Options, Run, config watcher hookup
//   - logging.go: zap logger construction
//   - metrics.go: prometheus registry and /metrics server
//   - poller.go: dispatcher counter mirror
package app
