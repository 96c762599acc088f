// Redis-backed Cache implementation.
package cache

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Redis satisfies Cache using a Redis backend.
type Redis struct {
	client *redis.Client
}

var _ Cache = (*Redis)(nil)

// NewRedis connects to the Redis instance at addr and verifies the
// connection with a bounded ping.
func NewRedis(addr string) (*Redis, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{client: client}, nil
}

// Get returns the value stored under key, or ErrMiss when absent.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, ErrMiss
	}
	return val, err
}

// Set stores value under key with the given TTL. A non-positive TTL falls
// back to DefaultTTL so entries never live forever.
func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error { return r.client.Close() }
