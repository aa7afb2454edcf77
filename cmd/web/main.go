package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/AdamBeresnev/arena-leaderboard/internal/config"
	"github.com/AdamBeresnev/arena-leaderboard/internal/service"
	"github.com/AdamBeresnev/arena-leaderboard/internal/store"
	"github.com/AdamBeresnev/arena-leaderboard/internal/tournament"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	var handler slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	registry, err := tournament.LoadRegistry(cfg.FormatsDir)
	if err != nil {
		logger.Error("Failed to load tournament formats", "error", err)
		os.Exit(1)
	}

	snapshots, closeStore, err := store.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	svc := service.NewLeaderboardService(registry, snapshots, logger)
	defer svc.Close()

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newRouter(cfg, svc),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server starting",
			"addr", cfg.Addr,
			"environment", cfg.Environment,
			"persistence", cfg.Persistence,
			"formats", len(registry.All()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown failed", "error", err)
	}
}
