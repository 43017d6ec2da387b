package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/hudsync/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "config file path (optional, defaults to ~/.config/hudsync/config.toml)")
	storageDir := flag.String("storage", "", "override the storage directory (optional)")
	headless := flag.Bool("headless", false, "run the dispatcher and heartbeat without the TUI")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		StorageDir: *storageDir,
		Headless:   *headless,
	}
	if err := app.Run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "hudsync: %v\n", err)
		return 1
	}
	return 0
}
