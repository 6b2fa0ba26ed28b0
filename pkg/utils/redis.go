package utils

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionCacheOptions are go-redis options for the shared CRM session.
// One key is read on cold start and written after login, so the pool stays tiny.
func SessionCacheOptions(addr string) *redis.Options {
	return &redis.Options{
		Addr:            addr,
		DialTimeout:     3 * time.Second,
		ReadTimeout:     2 * time.Second,
		WriteTimeout:    2 * time.Second,
		PoolSize:        2,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// OpenRedis connects with opts and pings within timeout.
func OpenRedis(ctx context.Context, opts *redis.Options, timeout time.Duration) (*redis.Client, error) {
	if opts == nil || opts.Addr == "" {
		return nil, errors.New("redis addr is required")
	}

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
