// Package redis builds the shared go-redis client. Every key written through
// it is namespaced by the configured prefix.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"passgate/internal/platform/config"
)

type Client struct {
	*redis.Client
	prefix string
}

// New connects and pings. Returns nil, nil when no URL is configured so
// callers can fall back to in-process stores.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &Client{Client: client, prefix: cfg.KeyPrefix}, nil
}

// Key namespaces parts under the configured prefix.
func (c *Client) Key(part string) string {
	return c.prefix + part
}

// Health is a readiness check.
func (c *Client) Health(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
