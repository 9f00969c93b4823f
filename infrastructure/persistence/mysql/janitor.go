package mysql

import (
	"context"
	"fmt"
	"time"

	"watchbox/pkg/logger"
	"watchbox/pkg/metrics"

	"go.uber.org/zap"
)

// Purger removes expired request ids.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired entries from the registry table.
type Janitor struct {
	purger   Purger
	interval time.Duration
	metrics  *metrics.Metrics
}

func NewJanitor(purger Purger, interval time.Duration, m *metrics.Metrics) (*Janitor, error) {
	if purger == nil {
		return nil, fmt.Errorf("purger is required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("purge interval must be positive")
	}
	return &Janitor{purger: purger, interval: interval, metrics: m}, nil
}

// Run blocks until ctx is done.
func (j *Janitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.purgeOnce(ctx)
		}
	}
}

func (j *Janitor) purgeOnce(ctx context.Context) {
	n, err := j.purger.Purge(ctx)
	if err != nil {
		if ctx.Err() == nil {
			logger.Error("Registry purge failed", zap.Error(err))
		}
		return
	}
	j.metrics.RecordPurged(n)
	if n > 0 {
		logger.Debug("Expired request ids purged", zap.Int64("count", n))
	}
}
