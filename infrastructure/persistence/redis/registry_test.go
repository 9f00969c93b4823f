package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"watchbox/config"
)

func newTestRegistry(t *testing.T) (*Registry, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	r, err := NewRegistry(NewClient(config.RedisConfig{Addr: mr.Addr()}), "watchbox", time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r, mr
}

func TestRegistry_RegisterOnce(t *testing.T) {
	r, mr := newTestRegistry(t)
	ctx := context.Background()

	seen, err := r.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, seen)

	first, err := r.Register(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, first)

	first, err = r.Register(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, first)

	seen, err = r.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, seen)

	assert.True(t, mr.Exists("watchbox:submit-order:abc"))
	assert.Equal(t, time.Hour, mr.TTL("watchbox:submit-order:abc"))
}

func TestRegistry_RetentionWindow(t *testing.T) {
	r, mr := newTestRegistry(t)
	ctx := context.Background()

	_, err := r.Register(ctx, "abc")
	require.NoError(t, err)
	mr.FastForward(time.Hour + time.Second)

	seen, err := r.Seen(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, seen)

	first, err := r.Register(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, first)
}

func TestRegistry_BackendDown(t *testing.T) {
	r, mr := newTestRegistry(t)
	mr.Close()

	_, err := r.Seen(context.Background(), "abc")
	assert.Error(t, err)
	_, err = r.Register(context.Background(), "abc")
	assert.Error(t, err)
	assert.Error(t, r.Ping(context.Background()))
}
