// Command janitor purges expired request ids from the MySQL idempotency
// registry, either once (cron) or on the configured interval.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"watchbox/config"
	"watchbox/infrastructure/persistence/mysql"
	"watchbox/infrastructure/persistence/retry"
	"watchbox/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("Janitor failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath string
		once       bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.BoolVar(&once, "once", false, "Purge once and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := logger.Init(&cfg.Log, cfg.App.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	db, err := mysql.FromConfig(cfg.Database).Connect()
	if err != nil {
		return fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	registry, err := mysql.NewRegistry(db, cfg.Idempotency.Retention, retry.FromConfig(cfg.Database.Retry))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if once {
		start := time.Now()
		n, err := registry.Purge(ctx)
		if err != nil {
			return fmt.Errorf("purge failed: %w", err)
		}
		logger.Info("Expired request ids purged", zap.Int64("rows", n), zap.Duration("elapsed", time.Since(start)))
		return nil
	}

	janitor, err := mysql.NewJanitor(registry, cfg.Idempotency.PurgeInterval, nil)
	if err != nil {
		return fmt.Errorf("failed to create janitor: %w", err)
	}

	logger.Info("Registry janitor started", zap.Duration("interval", cfg.Idempotency.PurgeInterval))
	if err := janitor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("janitor exited with error: %w", err)
	}
	logger.Info("Registry janitor stopped")
	return nil
}
