package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, "", time.Minute), mr
}

func TestAcquireRelease(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()
	key := c.Key("payroll:1-2024-W33")
	assert.Equal(t, "brushwork:lock:payroll:1-2024-W33", key)

	ok, err := c.Acquire(ctx, key, "t1", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Acquire(ctx, key, "t2", 0)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not get the lock")

	released, err := c.Release(ctx, key, "t2")
	require.NoError(t, err)
	assert.False(t, released, "only the holder may release")

	released, err = c.Release(ctx, key, "t1")
	require.NoError(t, err)
	assert.True(t, released)

	ok, err = c.Acquire(ctx, key, "t2", 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefreshAndExpiry(t *testing.T) {
	c, mr := newClient(t)
	ctx := context.Background()
	key := c.Key("x")

	ok, err := c.Acquire(ctx, key, "t1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	refreshed, err := c.Refresh(ctx, key, "t1", 10*time.Second)
	require.NoError(t, err)
	assert.True(t, refreshed)
	assert.Equal(t, 10*time.Second, mr.TTL(key))

	refreshed, err = c.Refresh(ctx, key, "other", time.Second)
	require.NoError(t, err)
	assert.False(t, refreshed)

	mr.FastForward(11 * time.Second)
	ok, err = c.Acquire(ctx, key, "t2", 0)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be taken")
}

func TestTryLock(t *testing.T) {
	c, _ := newClient(t)
	ctx := context.Background()

	unlock, ok, err := c.TryLock(ctx, "report")
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = c.TryLock(ctx, "report")
	require.NoError(t, err)
	assert.False(t, ok)

	unlock()
	unlock2, ok, err := c.TryLock(ctx, "report")
	require.NoError(t, err)
	assert.True(t, ok)
	unlock2()
}

func TestEmptyKeyOrToken(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.Acquire(context.Background(), "", "t", 0)
	assert.Error(t, err)
	_, err = c.Release(context.Background(), "k", "")
	assert.Error(t, err)
}
