// redis.go backs Store with a shared Redis instance, so the schema cache
// and trace cache stay warm across process restarts and are visible to
// every instance of the service behind the load balancer.
package kv

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis implements Store over a *redis.Client.
type Redis struct {
	cli *redis.Client
}

// NewRedis dials addr eagerly (Ping) so callers fail fast during boot,
// mirroring the way the database package Pings before returning.
func NewRedis(ctx context.Context, addr string) (*Redis, error) {
	cli := redis.NewClient(&redis.Options{Addr: addr})
	if err := cli.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &Redis{cli: cli}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.cli.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.cli.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.cli.Del(ctx, key).Err()
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error { return r.cli.Close() }
