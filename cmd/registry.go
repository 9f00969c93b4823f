package cmd

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"watchbox/config"
	"watchbox/domain/order"
	"watchbox/infrastructure/persistence/memory"
	"watchbox/infrastructure/persistence/mysql"
	"watchbox/infrastructure/persistence/redis"
	"watchbox/infrastructure/persistence/retry"
	"watchbox/pkg/logger"
	"watchbox/pkg/metrics"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendMySQL  = "mysql"
)

type registryBundle struct {
	registry order.Registry
	janitor  *mysql.Janitor
	closers  []func() error
}

// openRegistry 按 idempotency.backend 选择注册表实现
func openRegistry(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*registryBundle, error) {
	retention := cfg.Idempotency.Retention

	switch cfg.Idempotency.Backend {
	case "", BackendMemory:
		logger.Info("Using in-process idempotency registry", zap.Duration("retention", retention))
		reg, err := memory.NewRegistry(retention)
		if err != nil {
			return nil, err
		}
		return &registryBundle{registry: reg, closers: []func() error{reg.Close}}, nil

	case BackendRedis:
		logger.Info("Using Redis idempotency registry", zap.String("addr", cfg.Idempotency.Redis.Addr))
		client := redis.NewClient(cfg.Idempotency.Redis)
		reg, err := redis.NewRegistry(client, cfg.Idempotency.Redis.Prefix, retention)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		if err := reg.Ping(ctx); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to ping Redis: %w", err)
		}
		return &registryBundle{registry: reg, closers: []func() error{reg.Close}}, nil

	case BackendMySQL:
		return openMySQLRegistry(ctx, cfg, m)

	default:
		return nil, fmt.Errorf("unknown idempotency backend %q", cfg.Idempotency.Backend)
	}
}

func openMySQLRegistry(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*registryBundle, error) {
	logger.Info("Using MySQL/GORM idempotency registry")

	db, err := mysql.FromConfig(cfg.Database).Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	closers := []func() error{sqlDB.Close}

	if err := mysql.Ping(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping MySQL: %w", err)
	}

	reg, err := mysql.NewRegistry(db, cfg.Idempotency.Retention, retry.FromConfig(cfg.Database.Retry))
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	if err := reg.AutoMigrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	janitor, err := mysql.NewJanitor(reg, cfg.Idempotency.PurgeInterval, m)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	logger.Info("Connected to MySQL successfully")
	return &registryBundle{registry: reg, janitor: janitor, closers: closers}, nil
}
