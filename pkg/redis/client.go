// Package redis owns the optional Redis connection plus the cache and
// rate-limit helpers built on it. Redis being down or disabled never
// blocks the engine, only removes caching and cross-process throttling.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/wonny/limitup/pkg/config"
)

// Client wraps the go-redis client behind an enabled flag.
// ⭐ SSOT: the Redis connection is managed only here
type Client struct {
	rdb     *redis.Client
	enabled bool
}

// New connects when REDIS_ENABLED is set and pings before returning.
// With redis disabled it returns a usable client whose helpers no-op.
func New(cfg *config.Config) (*Client, error) {
	if !cfg.Redis.Enabled {
		return &Client{}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &Client{rdb: rdb, enabled: true}, nil
}

// Close closes the connection. Safe on a disabled client.
func (c *Client) Close() error {
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// Enabled reports whether a live connection exists.
func (c *Client) Enabled() bool {
	return c.enabled
}

// Redis exposes the underlying client for the Lua-based helpers.
func (c *Client) Redis() *redis.Client {
	return c.rdb
}
