package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bkonrad/snapback/internal/ipc"
)

func runServe(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: snapback serve")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Start the IPC daemon in the foreground. Shell integrations (tray,")
		fmt.Fprintln(os.Stdout, "shortcuts, context menus) talk to it over the unix socket.")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "serve takes no arguments")
		return 2
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	eng, cleanup, err := openEngine()
	if err != nil {
		logger.Error("failed to start", "error", err)
		return 1
	}
	defer cleanup()

	server, err := ipc.NewServer(eng.store, eng.capturer, eng.orch, eng.backend)
	if err != nil {
		logger.Error("failed to create IPC server", "error", err)
		return 1
	}
	if err := server.Start(); err != nil {
		logger.Error("failed to start IPC server", "error", err)
		return 1
	}
	defer server.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reflect external edits to the preset file while the daemon runs.
	go func() {
		err := eng.store.Watch(ctx, func() {
			logger.Info("preset collection changed on disk")
		})
		if err != nil && ctx.Err() == nil {
			logger.Warn("preset watcher stopped", "error", err)
		}
	}()

	logger.Info("snapback daemon running", "data_dir", eng.store.Path())
	<-ctx.Done()
	logger.Info("shutting down")
	return 0
}
