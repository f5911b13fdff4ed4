package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisClient(&Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestLock_ExclusiveUntilReleased(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	ok, err := c.AcquireLock(ctx, "lock:inventory:p1", "a", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.AcquireLock(ctx, "lock:inventory:p1", "b", 5*time.Second)
	require.NoError(t, err)
	assert.False(t, ok)

	// wrong owner cannot release
	require.NoError(t, c.ReleaseLock(ctx, "lock:inventory:p1", "b"))
	ok, _ = c.AcquireLock(ctx, "lock:inventory:p1", "b", 5*time.Second)
	assert.False(t, ok)

	require.NoError(t, c.ReleaseLock(ctx, "lock:inventory:p1", "a"))
	ok, err = c.AcquireLock(ctx, "lock:inventory:p1", "b", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLock_Expires(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	ok, _ := c.AcquireLock(ctx, "k", "a", time.Second)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err := c.AcquireLock(ctx, "k", "b", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestGetSetDeletePattern(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "products:list:a")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "products:list:a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "products:list:b", []byte("2"), time.Minute))
	require.NoError(t, c.Set(ctx, "other", []byte("3"), time.Minute))

	val, found, err := c.Get(ctx, "products:list:a")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", val)

	require.NoError(t, c.DeletePattern(ctx, "products:list:*"))

	_, found, _ = c.Get(ctx, "products:list:b")
	assert.False(t, found)
	_, found, _ = c.Get(ctx, "other")
	assert.True(t, found)
}
