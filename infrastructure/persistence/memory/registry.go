// Package memory keeps accepted request ids in process memory.
// Entries vanish on restart and are not shared between instances.
package memory

import (
	"context"
	"errors"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"watchbox/domain/order"
)

type Registry struct {
	cache *ttlcache.Cache[string, time.Time]
}

var _ order.Registry = (*Registry)(nil)

// NewRegistry starts the expiry loop; call Close to stop it.
func NewRegistry(retention time.Duration) (*Registry, error) {
	if retention <= 0 {
		return nil, errors.New("retention must be positive")
	}
	cache := ttlcache.New[string, time.Time](
		ttlcache.WithTTL[string, time.Time](retention),
		ttlcache.WithDisableTouchOnHit[string, time.Time](),
	)
	go cache.Start()
	return &Registry{cache: cache}, nil
}

func (r *Registry) Seen(_ context.Context, requestID string) (bool, error) {
	return r.cache.Has(requestID), nil
}

func (r *Registry) Register(_ context.Context, requestID string) (bool, error) {
	_, found := r.cache.GetOrSet(requestID, time.Now())
	return !found, nil
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

func (r *Registry) Ping(context.Context) error {
	return nil
}

func (r *Registry) Name() string {
	return "memory"
}

func (r *Registry) Close() error {
	r.cache.Stop()
	return nil
}
