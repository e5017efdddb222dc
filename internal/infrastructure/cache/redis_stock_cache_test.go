package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Multitienda-api/internal/domain/entity"
)

func TestStockKey(t *testing.T) {
	assert.Equal(t, "stock:s1:p1", StockKey("s1", "p1"))
}

// Requiere MULTITIENDA_TEST_REDIS_ADDR (p. ej. localhost:6379).
func TestRedisStockCache_SetGetDelete(t *testing.T) {
	addr := os.Getenv("MULTITIENDA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("MULTITIENDA_TEST_REDIS_ADDR no definido")
	}
	ctx := context.Background()
	c := NewRedisStockCache(addr, "", 0, time.Minute)
	t.Cleanup(func() { _ = c.Close() })
	require.NoError(t, c.Ping(ctx))

	level := &entity.StockLevel{StoreID: "s-test", ProductID: "p-test", Quantity: 7, MinStock: 2, UpdatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, c.Set(ctx, level))

	got, err := c.Get(ctx, "s-test", "p-test")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, 2, got.MinStock)
	assert.True(t, got.UpdatedAt.Equal(level.UpdatedAt))

	require.NoError(t, c.Delete(ctx, "s-test", "p-test"))
	got, err = c.Get(ctx, "s-test", "p-test")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "s-test"))
}

func TestNoopStockCache(t *testing.T) {
	ctx := context.Background()
	var c NoopStockCache
	require.NoError(t, c.Set(ctx, &entity.StockLevel{StoreID: "s", ProductID: "p", Quantity: 1}))
	got, err := c.Get(ctx, "s", "p")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, c.Delete(ctx, "s", "p"))
}
