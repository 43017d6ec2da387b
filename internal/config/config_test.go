package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	wantDir, err := expandPath(defaultStorageDir)
	if err != nil {
		t.Fatalf("expandPath: %v", err)
	}
	if cfg.StorageDir != wantDir {
		t.Fatalf("StorageDir = %q, want %q", cfg.StorageDir, wantDir)
	}
	if cfg.LogPath != filepath.Join(wantDir, defaultLogFile) {
		t.Fatalf("LogPath = %q, want it inside StorageDir", cfg.LogPath)
	}
	if cfg.MaxDocumentBytes != 262144 {
		t.Fatalf("MaxDocumentBytes = %d, want 262144", cfg.MaxDocumentBytes)
	}
	if cfg.UrgentInterval != 100*time.Millisecond || cfg.IdleInterval != 500*time.Millisecond {
		t.Fatalf("intervals = %s/%s, want 100ms/500ms", cfg.UrgentInterval, cfg.IdleInterval)
	}
	if cfg.HeartbeatEvery != 3*time.Second || cfg.LevelUpRecheck != 300*time.Millisecond {
		t.Fatalf("heartbeat/level-up = %s/%s", cfg.HeartbeatEvery, cfg.LevelUpRecheck)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "console" || cfg.Theme != "Dracula" {
		t.Fatalf("log/theme defaults = %q %q %q", cfg.LogLevel, cfg.LogFormat, cfg.Theme)
	}
	if cfg.MetricsAddr != "" {
		t.Fatalf("MetricsAddr = %q, want empty", cfg.MetricsAddr)
	}
}

func TestLoad_ParsesAndTrimsConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, `
storage_dir = "  ~/.hud  "
max_document_bytes = 4096
urgent_interval = "50ms"
idle_interval = " 2s "
log_level = "DEBUG"
log_format = "json"
metrics_addr = " 127.0.0.1:9464 "
theme = "Slate"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !strings.HasPrefix(cfg.StorageDir, home) || filepath.Base(cfg.StorageDir) != ".hud" {
		t.Fatalf("StorageDir = %q, want ~/.hud under %q", cfg.StorageDir, home)
	}
	if cfg.MaxDocumentBytes != 4096 {
		t.Fatalf("MaxDocumentBytes = %d, want 4096", cfg.MaxDocumentBytes)
	}
	if cfg.UrgentInterval != 50*time.Millisecond || cfg.IdleInterval != 2*time.Second {
		t.Fatalf("intervals = %s/%s, want 50ms/2s", cfg.UrgentInterval, cfg.IdleInterval)
	}
	if cfg.TickEvery != 50*time.Millisecond {
		t.Fatalf("TickEvery = %s, want default", cfg.TickEvery)
	}
	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Fatalf("log = %q/%q, want debug/json", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.MetricsAddr != "127.0.0.1:9464" || cfg.Theme != "Slate" {
		t.Fatalf("metrics/theme = %q/%q", cfg.MetricsAddr, cfg.Theme)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "idle_interval = \"2s\"\n")

	storage := filepath.Join(t.TempDir(), "store")
	t.Setenv("HUDSYNC_IDLE_INTERVAL", "750ms")
	t.Setenv("HUDSYNC_STORAGE_DIR", storage)
	t.Setenv("HUDSYNC_MAX_DOCUMENT_BYTES", "1024")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.IdleInterval != 750*time.Millisecond {
		t.Fatalf("IdleInterval = %s, want 750ms", cfg.IdleInterval)
	}
	if cfg.StorageDir != storage {
		t.Fatalf("StorageDir = %q, want %q", cfg.StorageDir, storage)
	}
	if cfg.MaxDocumentBytes != 1024 {
		t.Fatalf("MaxDocumentBytes = %d, want 1024", cfg.MaxDocumentBytes)
	}
	if cfg.LogPath != filepath.Join(storage, defaultLogFile) {
		t.Fatalf("LogPath = %q, want it under the overridden storage dir", cfg.LogPath)
	}
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name string
		body string
	}{
		{"negative interval", `urgent_interval = "-1s"`},
		{"zero interval", `pause_recheck = "0s"`},
		{"bad duration", `idle_interval = "soon"`},
		{"negative limit", `max_document_bytes = -5`},
		{"bad level", `log_level = "loud"`},
		{"bad format", `log_format = "xml"`},
		{"bad toml", `storage_dir = `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			writeConfig(t, path, tt.body+"\n")
			if _, err := Load(path); err == nil {
				t.Fatal("Load returned nil error")
			}
		})
	}
}

func TestWithStorageDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "override")
	moved, err := cfg.WithStorageDir(dir)
	if err != nil {
		t.Fatalf("WithStorageDir: %v", err)
	}
	if moved.StorageDir != dir || moved.LogPath != filepath.Join(dir, defaultLogFile) {
		t.Fatalf("moved = %q / %q, want log to follow storage", moved.StorageDir, moved.LogPath)
	}

	cfg.LogPath = "/var/log/hudsync.log"
	moved, err = cfg.WithStorageDir(dir)
	if err != nil {
		t.Fatalf("WithStorageDir: %v", err)
	}
	if moved.LogPath != "/var/log/hudsync.log" {
		t.Fatalf("explicit LogPath changed to %q", moved.LogPath)
	}
}

func TestResolvePath_DefaultsUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got, err := ResolvePath("  ")
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	want := filepath.Join(home, ".config", "hudsync", "config.toml")
	if got != want {
		t.Fatalf("ResolvePath = %q, want %q", got, want)
	}
}

func TestWatch_ReloadsOnChange(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "idle_interval = \"1s\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 4)
	errCh := make(chan error, 1)
	go func() {
		errCh <- Watch(ctx, path, 20*time.Millisecond, nil, func(cfg Config) {
			changes <- cfg
		})
	}()

	// Give the watcher time to register before the first write; keep writing
	// until a reload comes through.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case cfg := <-changes:
			if cfg.IdleInterval != 2*time.Second {
				t.Fatalf("IdleInterval = %s, want 2s", cfg.IdleInterval)
			}
			cancel()
			if err := <-errCh; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-ticker.C:
			writeConfig(t, path, "idle_interval = \"2s\"\n")
		case <-deadline:
			t.Fatal("timed out waiting for reload")
		}
	}
}

func TestWatch_SkipsInvalidReload(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.toml")
	writeConfig(t, path, "idle_interval = \"1s\"\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Config, 8)
	go func() {
		_ = Watch(ctx, path, 20*time.Millisecond, nil, func(cfg Config) {
			changes <- cfg
		})
	}()

	time.Sleep(200 * time.Millisecond)
	writeConfig(t, path, "idle_interval = \"never\"\n")

	select {
	case cfg := <-changes:
		t.Fatalf("invalid config delivered: %+v", cfg)
	case <-time.After(400 * time.Millisecond):
	}
}
