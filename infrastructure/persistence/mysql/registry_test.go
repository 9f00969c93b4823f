package mysql

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"watchbox/infrastructure/persistence/mysql/po"
	"watchbox/infrastructure/persistence/retry"
)

func TestProcessedRequestPO(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	p := po.NewProcessedRequest("abc", now, time.Hour)
	assert.Equal(t, "processed_requests", p.TableName())
	assert.False(t, p.Expired(now.Add(59*time.Minute)))
	assert.True(t, p.Expired(now.Add(time.Hour)))
}

func TestNewRegistry_Validation(t *testing.T) {
	_, err := NewRegistry(nil, time.Hour, retry.DefaultConfig)
	assert.Error(t, err)
}

// openTestDB needs WATCHBOX_TEST_MYSQL_DSN pointing at a disposable schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("WATCHBOX_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("WATCHBOX_TEST_MYSQL_DSN not set")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestRegistry_MySQL(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	r, err := NewRegistry(db, time.Hour, retry.DefaultConfig)
	require.NoError(t, err)
	require.NoError(t, r.AutoMigrate(ctx))

	id := uuid.NewString()
	seen, err := r.Seen(ctx, id)
	require.NoError(t, err)
	assert.False(t, seen)

	first, err := r.Register(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	first, err = r.Register(ctx, id)
	require.NoError(t, err)
	assert.False(t, first)

	seen, err = r.Seen(ctx, id)
	require.NoError(t, err)
	assert.True(t, seen)

	// after the retention window the id is reclaimable and purgeable
	r.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	seen, err = r.Seen(ctx, id)
	require.NoError(t, err)
	assert.False(t, seen)

	n, err := r.Purge(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, n, int64(1))
}

func TestRegistry_MySQLConcurrentRegister(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	r, err := NewRegistry(db, time.Hour, retry.DefaultConfig)
	require.NoError(t, err)
	require.NoError(t, r.AutoMigrate(ctx))

	id := uuid.NewString()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if first, err := r.Register(ctx, id); err == nil && first {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
