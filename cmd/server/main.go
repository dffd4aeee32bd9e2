package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ats-sync/internal/app"
	"ats-sync/internal/config"
	"ats-sync/internal/database/migration"
	"ats-sync/internal/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.App.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	container, err := app.NewContainer(cfg, zl)
	if err != nil {
		zl.Fatalw("failed to build container", "error", err)
	}

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	applied, err := migration.NewRunner(zl.Named("migration")).Run(migrateCtx, container.DB)
	cancelMigrate()
	if err != nil {
		_ = container.Close()
		zl.Fatalw("failed to run migrations", "error", err)
	}
	zl.Infow("migrations applied", "count", applied)

	bootstrap, cleanup, err := app.Bootstrap(container)
	if err != nil {
		_ = container.Close()
		zl.Fatalw("failed to bootstrap app", "error", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			zl.Warnw("cleanup error", "error", err)
		}
	}()

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if err := container.StartBackground(bgCtx); err != nil {
		zl.Errorw("failed to start background workers", "error", err)
		return
	}

	addr, err := app.ListenAddr(cfg.App.HTTPPort)
	if err != nil {
		zl.Errorw("invalid HTTP port", "error", err)
		return
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- bootstrap.Fiber.Listen(addr)
	}()
	zl.Infow("http server listening", "addr", addr, "ats_enabled", container.Flags.IntegrationEnabled())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zl.Errorw("server error", "error", err)
		}
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := bootstrap.Fiber.ShutdownWithContext(ctx); err != nil {
			zl.Warnw("shutdown error", "error", err)
		}
	}
	stopBackground()
}
