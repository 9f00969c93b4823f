// Package redis shares accepted request ids between instances through Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"watchbox/config"
	"watchbox/domain/order"
)

const operation = "submit-order"

type Registry struct {
	client    goredis.UniversalClient
	prefix    string
	retention time.Duration
}

var _ order.Registry = (*Registry)(nil)

// NewClient opens a client from the idempotency redis section.
func NewClient(cfg config.RedisConfig) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRegistry(client goredis.UniversalClient, prefix string, retention time.Duration) (*Registry, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if retention <= 0 {
		return nil, errors.New("retention must be positive")
	}
	return &Registry{client: client, prefix: prefix, retention: retention}, nil
}

// Key builds "<prefix>:submit-order:<id>".
func (r *Registry) Key(requestID string) string {
	return fmt.Sprintf("%s:%s:%s", r.prefix, operation, requestID)
}

func (r *Registry) Seen(ctx context.Context, requestID string) (bool, error) {
	n, err := r.client.Exists(ctx, r.Key(requestID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis exists: %w", err)
	}
	return n > 0, nil
}

func (r *Registry) Register(ctx context.Context, requestID string) (bool, error) {
	ok, err := r.client.SetNX(ctx, r.Key(requestID), strconv.FormatInt(time.Now().Unix(), 10), r.retention).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

func (r *Registry) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Registry) Name() string {
	return "redis"
}

func (r *Registry) Close() error {
	return r.client.Close()
}
