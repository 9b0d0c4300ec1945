package redisclient

import (
	"context"
	"testing"
	"time"

	"inventory-service/internal/docstore"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	return mr, NewClientFromRedis(rdb, time.Minute)
}

func TestInventoryCacheMiss(t *testing.T) {
	_, c := setupTestRedis(t)

	docs, gen, ok, err := c.GetInventory(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, docs)
	assert.Equal(t, int64(0), gen)
}

func TestInventoryCacheRoundTrip(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	items := []docstore.Document{
		{"itemCode": "A-1", "price": float64(2)},
		{"itemCode": "B-2", "price": float64(3)},
	}
	_, gen, _, err := c.GetInventory(ctx)
	require.NoError(t, err)
	require.NoError(t, c.SetInventory(ctx, gen, items))
	assert.Equal(t, time.Minute, mr.TTL(inventoryKey(gen)))

	docs, _, ok, err := c.GetInventory(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, items, docs)

	require.NoError(t, c.InvalidateInventory(ctx))
	_, next, ok, err := c.GetInventory(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, gen+1, next)
}

func TestInventoryCacheSkipsListLoadedBeforeWrite(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	// A reader misses and loads the list; a write lands before it stores it.
	_, gen, ok, err := c.GetInventory(ctx)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.InvalidateInventory(ctx))
	require.NoError(t, c.SetInventory(ctx, gen, []docstore.Document{{"itemCode": "old"}}))

	assert.False(t, mr.Exists(inventoryKey(gen)))
	_, _, ok, err = c.GetInventory(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestInventoryCacheEmptyListIsAHit(t *testing.T) {
	_, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetInventory(ctx, 0, []docstore.Document{}))

	docs, _, ok, err := c.GetInventory(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestInventoryCacheExpires(t *testing.T) {
	mr, c := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, c.SetInventory(ctx, 0, []docstore.Document{{"itemCode": "A-1"}}))
	mr.FastForward(2 * time.Minute)

	_, _, ok, err := c.GetInventory(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCorruptCacheEntry(t *testing.T) {
	mr, c := setupTestRedis(t)
	require.NoError(t, mr.Set(inventoryKey(0), "not-json"))

	_, _, ok, err := c.GetInventory(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestCorruptGeneration(t *testing.T) {
	mr, c := setupTestRedis(t)
	require.NoError(t, mr.Set(GenerationKey, "abc"))

	_, _, ok, err := c.GetInventory(context.Background())
	assert.Error(t, err)
	assert.False(t, ok)
	assert.Error(t, c.SetInventory(context.Background(), 0, nil))
}

func TestPing(t *testing.T) {
	mr, c := setupTestRedis(t)
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
