package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"thirdpersonmp/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadObserver()
	if err != nil {
		slog.Error("invalid observer config", "err", err)
		os.Exit(1)
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	slog.InfoContext(ctx, "starting observers", "count", cfg.Count, "server", cfg.ServerURL)

	eg, egCtx := errgroup.WithContext(ctx)
	for i := range cfg.Count {
		eg.Go(func() error {
			runPeer(egCtx, cfg, i)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "observer failed", "err", err)
		os.Exit(1)
	}
	slog.InfoContext(ctx, "all observers stopped")
}
