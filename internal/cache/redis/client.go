// Package redis implements the signal bus and lock manager using go-redis/v9.
package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Options holds the connection parameters exposed through configuration.
type Options struct {
	Addr       string
	Password   string
	DB         int
	PoolSize   int
	MaxRetries int
	TLSEnabled bool
}

// Connect opens a go-redis client and pings it so a dead broker fails at
// startup. The caller owns the returned client and must Close it on shutdown.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	ro := &redis.Options{
		Addr:       opts.Addr,
		Password:   opts.Password,
		DB:         opts.DB,
		PoolSize:   opts.PoolSize,
		MaxRetries: opts.MaxRetries,
	}
	if opts.TLSEnabled {
		ro.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return rdb, nil
}
