package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"token-finder/internal/analyze"
	"token-finder/internal/llm"
	"token-finder/internal/logger"
	"token-finder/internal/params"
	"token-finder/internal/rank"
	"token-finder/internal/searchcaster"
	"token-finder/internal/server"
	"token-finder/internal/store"
	"token-finder/internal/suggest"
)

func main() {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("logger init failed: " + err.Error() + "\n")
		os.Exit(1)
	}
	ctx := context.Background()
	defer func() {
		if err := logger.Shutdown(ctx); err != nil {
			logger.ErrorWithErr(ctx, "Logger shutdown failed", err)
		}
	}()

	cfg, err := loadConfig(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Configuration invalid", err)
		os.Exit(1)
	}

	requests, err := store.OpenRequestStore(cfg.Database.Path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to open request store", err, "path", cfg.Database.Path)
		os.Exit(1)
	}
	defer requests.Close()

	model := llm.FromConfig(cfg)
	orchestrator := analyze.NewOrchestrator(
		params.NewExtractor(model, cfg),
		requests,
		searchcaster.NewClient(cfg),
		rank.NewRanker(cfg),
		suggest.NewSuggester(model),
		cfg,
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(orchestrator).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "Server listening", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorWithErr(ctx, "Server stopped", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.ErrorWithErr(ctx, "Graceful shutdown failed", err)
	}
}

// loadConfig reads the yaml config named by CONFIG_PATH, falling back to
// built-in defaults when no file exists.
func loadConfig(ctx context.Context) (*store.Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	cfg, err := store.LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn(ctx, "No config file found, using defaults", "path", path)
			return store.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}
