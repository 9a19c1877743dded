package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopcart/backend/internal/domain/cart"
)

// DefaultStoreTimeout bounds a single Redis call
const DefaultStoreTimeout = 3 * time.Second

// RedisCartRepository implements cart.Repository on top of Redis.
// Carts are stored as JSON strings keyed by the cart id.
type RedisCartRepository struct {
	client  redis.Cmdable
	timeout time.Duration
}

// NewRedisCartRepository creates a cart repository using an existing Redis client
func NewRedisCartRepository(client redis.Cmdable, timeout time.Duration) *RedisCartRepository {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &RedisCartRepository{
		client:  client,
		timeout: timeout,
	}
}

// Find loads the cart stored under id. A missing key, or one holding a
// null document, is absent rather than an error.
func (r *RedisCartRepository) Find(ctx context.Context, id string) (*cart.Cart, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &cart.StoreError{Op: "get", Key: id, Err: err}
	}

	c, err := cart.Decode(data)
	if err != nil {
		return nil, &cart.StoreError{Op: "decode", Key: id, Err: err}
	}
	return c, nil
}

// Delete removes the cart stored under id. Deleting a missing key succeeds.
func (r *RedisCartRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.client.Del(ctx, id).Err(); err != nil {
		return &cart.StoreError{Op: "delete", Key: id, Err: err}
	}
	return nil
}

// Ensure RedisCartRepository implements cart.Repository
var _ cart.Repository = (*RedisCartRepository)(nil)
