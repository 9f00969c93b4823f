package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"watchbox/domain/order"
	"watchbox/infrastructure/persistence/mysql/po"
	"watchbox/infrastructure/persistence/retry"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Registry durable order.Registry backed by the processed_requests table.
type Registry struct {
	db        *gorm.DB
	retention time.Duration
	retry     retry.Config
	now       func() time.Time
}

var _ order.Registry = (*Registry)(nil)

func NewRegistry(db *gorm.DB, retention time.Duration, retryConfig retry.Config) (*Registry, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	if retention <= 0 {
		return nil, errors.New("retention must be positive")
	}
	return &Registry{
		db:        db,
		retention: retention,
		retry:     retryConfig,
		now:       time.Now,
	}, nil
}

// AutoMigrate creates or updates the processed_requests table.
func (r *Registry) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&po.ProcessedRequestPO{})
}

func (r *Registry) Seen(ctx context.Context, requestID string) (bool, error) {
	var count int64
	err := retry.ExecuteWithRetry(ctx, r.retry, func(ctx context.Context) error {
		return r.db.WithContext(ctx).
			Model(&po.ProcessedRequestPO{}).
			Where("request_id = ? AND expires_at > ?", requestID, r.now().UTC()).
			Count(&count).Error
	})
	if err != nil {
		return false, fmt.Errorf("lookup request id: %w", err)
	}
	return count > 0, nil
}

// Register inserts the id; when a row already exists but has expired it is
// reclaimed with a conditional update, so only one caller ever wins.
func (r *Registry) Register(ctx context.Context, requestID string) (bool, error) {
	var first bool
	err := retry.ExecuteWithRetry(ctx, r.retry, func(ctx context.Context) error {
		now := r.now()
		entry := po.NewProcessedRequest(requestID, now, r.retention)

		res := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(entry)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 1 {
			first = true
			return nil
		}

		res = r.db.WithContext(ctx).
			Model(&po.ProcessedRequestPO{}).
			Where("request_id = ? AND expires_at <= ?", requestID, now.UTC()).
			Updates(map[string]interface{}{
				"registered_at": entry.RegisteredAt,
				"expires_at":    entry.ExpiresAt,
			})
		if res.Error != nil {
			return res.Error
		}
		first = res.RowsAffected == 1
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("register request id: %w", err)
	}
	return first, nil
}

// Purge deletes expired ids and returns how many were removed.
func (r *Registry) Purge(ctx context.Context) (int64, error) {
	var purged int64
	err := retry.ExecuteWithRetry(ctx, r.retry, func(ctx context.Context) error {
		res := r.db.WithContext(ctx).
			Where("expires_at <= ?", r.now().UTC()).
			Delete(&po.ProcessedRequestPO{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}

func (r *Registry) Ping(ctx context.Context) error {
	return Ping(ctx, r.db)
}

func (r *Registry) Name() string {
	return "mysql"
}
