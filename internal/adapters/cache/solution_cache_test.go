package cache

import (
	"context"
	"database/sql"
	"driver-route-planner/internal/adapters/repositories"
	"driver-route-planner/internal/ports"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var (
	_ ports.SolutionCache = (*MemorySolutionCache)(nil)
	_ ports.SolutionCache = (*RedisSolutionCache)(nil)
	_ ports.SolutionCache = (*SqliteSolutionCache)(nil)
)

// Shared behavior every backend must provide.
func exerciseCache(t *testing.T, c ports.SolutionCache) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "plan:missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "plan:a", []byte(`{"routes":[[1]]}`), time.Minute))
	got, ok, err := c.Get(ctx, "plan:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"routes":[[1]]}`, string(got))

	require.NoError(t, c.Set(ctx, "plan:a", []byte(`{"routes":[[2]]}`), time.Minute))
	got, ok, err = c.Get(ctx, "plan:a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"routes":[[2]]}`, string(got))

	require.NoError(t, c.Set(ctx, "plan:zero", []byte("x"), 0))
	_, ok, err = c.Get(ctx, "plan:zero")
	require.NoError(t, err)
	assert.False(t, ok, "zero ttl must not store")
}

func TestMemorySolutionCache(t *testing.T) {
	exerciseCache(t, NewMemorySolutionCache())
}

func TestMemorySolutionCacheExpires(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewMemorySolutionCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), time.Minute))
	now = now.Add(2 * time.Minute)

	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSolutionCache(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewRedisSolutionCache("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	require.NoError(t, c.Ping(context.Background()))
	exerciseCache(t, c)

	assert.True(t, mr.Exists(redisKeyPrefix+"plan:a"))
	mr.FastForward(2 * time.Minute)
	_, ok, err := c.Get(context.Background(), "plan:a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSolutionCacheFromClient(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisSolutionCacheFromClient(rdb)
	t.Cleanup(func() { c.Close() })

	exerciseCache(t, c)
}

func TestRedisSolutionCacheBadURL(t *testing.T) {
	_, err := NewRedisSolutionCache("not a url")
	assert.Error(t, err)
}

func openCacheDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repositories.InitSchema(db))
	return db
}

func TestSqliteSolutionCache(t *testing.T) {
	exerciseCache(t, NewSqliteSolutionCache(openCacheDB(t)))
}

func TestSqliteSolutionCacheExpiryAndPurge(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	c := NewSqliteSolutionCache(openCacheDB(t))
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, c.Set(ctx, "long", []byte("b"), time.Hour))

	now = now.Add(10 * time.Minute)

	_, ok, err := c.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, ok, err := c.Get(ctx, "long")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "b", string(got))
}
