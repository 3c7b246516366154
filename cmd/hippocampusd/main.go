package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hippocampus-app/hippocampus/internal/chat"
	"github.com/hippocampus-app/hippocampus/internal/common"
	"github.com/hippocampus-app/hippocampus/internal/export"
	"github.com/hippocampus-app/hippocampus/internal/ingest"
	"github.com/hippocampus-app/hippocampus/internal/repository"
	"github.com/hippocampus-app/hippocampus/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("config.invalid", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("db.open.failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := repository.HealthCheck(ctx, store, cfg.Database.DialTimeout, logger); err != nil {
		logger.Error("db.health.failed", "error", err)
		os.Exit(1)
	}

	router, extractor, cleanup, err := buildProviders(ctx, cfg, logger)
	if err != nil {
		logger.Error("llm.provider.failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	chatSvc := chat.NewService(store, router, extractor,
		cfg.Household.Name, cfg.Household.DefaultCurrency, logger)
	exportSvc := export.NewService(store, logger)

	if cfg.Ingest.Dir != "" && extractor != nil {
		paths, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
			Root:        cfg.Ingest.Dir,
			InitialScan: cfg.Ingest.InitialScan,
			Debounce:    cfg.Ingest.Debounce,
		}, logger)
		if err != nil {
			logger.Error("ingest.watcher.failed", "dir", cfg.Ingest.Dir, "error", err)
			os.Exit(1)
		}
		go ingest.NewProcessor(chatSvc, cfg.Ingest.Member, logger).Run(ctx, paths)
		go func() {
			for err := range watchErrs {
				logger.Warn("ingest.watch.error", "error", err)
			}
		}()
		logger.Info("ingest.watching", "dir", cfg.Ingest.Dir, "member", cfg.Ingest.Member)
	}

	srv := server.NewServer(chatSvc, exportSvc, store, cfg.Server, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("http.serve.failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http.shutdown.failed", "error", err)
	}
	logger.Info("server.stopped")
}
