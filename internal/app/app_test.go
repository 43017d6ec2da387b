package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/five82/hudsync/internal/config"
	"github.com/five82/hudsync/internal/dispatch"
	"github.com/five82/hudsync/internal/logtail"
	"github.com/five82/hudsync/internal/state"
)

func isolateEnv(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"STORAGE_DIR", "LOG_PATH", "LOG_LEVEL", "LOG_FORMAT", "METRICS_ADDR"} {
		name := config.EnvPrefix + key
		t.Setenv(name, "")
		_ = os.Unsetenv(name)
	}
	return home
}

func TestRun_HeadlessPublishesAndStops(t *testing.T) {
	isolateEnv(t)
	storage := filepath.Join(t.TempDir(), "store")
	t.Setenv(config.EnvPrefix+"HEARTBEAT_INTERVAL", "20ms")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{
			ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
			StorageDir: storage,
			Headless:   true,
		})
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not stop after the context was cancelled")
	}

	lines, err := logtail.Read(filepath.Join(storage, "hudsync.log"), 0, 0)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"hudsync starting", "hudsync stopped"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("log missing %q:\n%s", want, joined)
		}
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("log_level = \"loud\"\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	err := Run(context.Background(), Options{ConfigPath: path, Headless: true})
	if err == nil || !strings.Contains(err.Error(), "load config") {
		t.Fatalf("Run error = %v, want a load config error", err)
	}
}

func TestNewLogger_ConsoleLinesAreTabSeparated(t *testing.T) {
	cfg := config.Default()
	cfg.LogPath = filepath.Join(t.TempDir(), "logs", "hudsync.log")
	cfg.LogLevel = "info"
	cfg.LogFormat = "console"

	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Named("durable").Info("document saved")
	logger.Debug("hidden")
	closeLog()

	lines, err := logtail.Read(cfg.LogPath, 0, 0)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("lines = %q, want only the info line", lines)
	}
	cols := strings.Split(lines[0], "\t")
	if len(cols) != 4 || cols[1] != "INFO" || cols[2] != "durable" || cols[3] != "document saved" {
		t.Fatalf("columns = %q", cols)
	}
}

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.Default()
	cfg.LogPath = filepath.Join(t.TempDir(), "hudsync.log")
	cfg.LogLevel = "debug"
	cfg.LogFormat = "json"

	logger, closeLog, err := newLogger(cfg, false)
	if err != nil {
		t.Fatalf("newLogger: %v", err)
	}
	logger.Debug("tick")
	closeLog()

	data, err := os.ReadFile(cfg.LogPath)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), `"level":"debug"`) || !strings.Contains(string(data), `"msg":"tick"`) {
		t.Fatalf("json log = %s", data)
	}
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	d := dispatch.New(dispatch.HostFuncs{}, dispatch.Options{Metrics: dispatch.NewMetrics(reg), Enabled: true})
	d.RequestUpdate(true)
	d.Drain()

	server := httptest.NewServer(metricsHandler(reg))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "hudsync_dispatch_") {
		t.Fatalf("metrics missing dispatcher series:\n%s", body)
	}
}

type fixedStats dispatch.Stats

func (f fixedStats) Stats() dispatch.Stats { return dispatch.Stats(f) }

func TestRefresh_CopiesCounters(t *testing.T) {
	store := &state.Store{}
	store.Update(func(s *state.Snapshot) { s.Publishes = 9 })

	refresh(store, fixedStats{Publishes: 4, Forced: 2, Throttled: 7, Failures: 1, Enabled: true})

	snap := store.Snapshot()
	if snap.Publishes != 9 {
		t.Fatalf("Publishes = %d, want the larger count kept", snap.Publishes)
	}
	if snap.Forced != 2 || snap.Throttled != 7 || snap.Failures != 1 || !snap.Enabled {
		t.Fatalf("snapshot = %+v", snap)
	}
}
