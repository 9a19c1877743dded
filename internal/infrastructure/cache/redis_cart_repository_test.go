package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopcart/backend/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) (*RedisCartRepository, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()).Err())
	return NewRedisCartRepository(client, 0), server
}

func TestRedisCartRepository_Find(t *testing.T) {
	ctx := context.Background()

	t.Run("returns stored cart", func(t *testing.T) {
		repo, server := newTestRepository(t)
		require.NoError(t, server.Set("42", `{"total":3,"items":[{"sku":"A","qty":1},{"sku":"B","qty":2}]}`))

		c, err := repo.Find(ctx, "42")
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, []string{"A", "B"}, c.SKUs())
		assert.Equal(t, 2, c.Items[1].Quantity)
	})

	t.Run("missing key is absent, not an error", func(t *testing.T) {
		repo, _ := newTestRepository(t)

		c, err := repo.Find(ctx, "nobody")
		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("null document is absent", func(t *testing.T) {
		repo, server := newTestRepository(t)
		require.NoError(t, server.Set("42", `null`))

		c, err := repo.Find(ctx, "42")
		assert.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("store failure is a StoreError", func(t *testing.T) {
		repo, server := newTestRepository(t)
		server.SetError("LOADING Redis is loading the dataset in memory")

		_, err := repo.Find(ctx, "42")
		require.Error(t, err)

		var storeErr *cart.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "get", storeErr.Op)
		assert.Equal(t, "42", storeErr.Key)
	})

	t.Run("corrupt document is a StoreError", func(t *testing.T) {
		repo, server := newTestRepository(t)
		require.NoError(t, server.Set("42", `not json`))

		_, err := repo.Find(ctx, "42")

		var storeErr *cart.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "decode", storeErr.Op)
	})

	t.Run("unreachable server is a StoreError", func(t *testing.T) {
		repo, server := newTestRepository(t)
		server.Close()

		_, err := repo.Find(ctx, "42")

		var storeErr *cart.StoreError
		assert.ErrorAs(t, err, &storeErr)
	})
}

func TestRedisCartRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes existing cart", func(t *testing.T) {
		repo, server := newTestRepository(t)
		require.NoError(t, server.Set("42", `{"items":[]}`))

		require.NoError(t, repo.Delete(ctx, "42"))
		assert.False(t, server.Exists("42"))
	})

	t.Run("deleting a missing cart gives the same result", func(t *testing.T) {
		repo, server := newTestRepository(t)
		require.NoError(t, server.Set("42", `{"items":[]}`))

		first := repo.Delete(ctx, "42")
		second := repo.Delete(ctx, "42")
		never := repo.Delete(ctx, "never-existed")

		assert.NoError(t, first)
		assert.Equal(t, first, second)
		assert.Equal(t, first, never)
	})

	t.Run("store failure is a StoreError", func(t *testing.T) {
		repo, server := newTestRepository(t)
		server.SetError("READONLY You can't write against a read only replica.")

		err := repo.Delete(ctx, "42")

		var storeErr *cart.StoreError
		require.ErrorAs(t, err, &storeErr)
		assert.Equal(t, "delete", storeErr.Op)
	})
}
