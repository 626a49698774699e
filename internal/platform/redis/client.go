// Package redis dials the connection backing the session-record store.
// Resolution records are small JSON blobs with a TTL, so one pooled client
// with bounded timeouts covers the whole service; an empty URL means records
// stay in process memory and no connection is made.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"veridoc/internal/platform/config"
)

// Connect parses and dials the configured Redis URL, verifying the
// connection with a ping bounded by the dial timeout. Returns (nil, nil)
// when no URL is configured.
func Connect(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}
