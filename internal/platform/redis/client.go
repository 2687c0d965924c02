// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis owns the connection to the Session Cache.

The cache holds one short-lived token per user under [SessionKey]. Entries
expire through the native TTL and are revoked by deleting the key. Nothing
else is stored here, so the key space is a single prefix.
*/
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/tablefinder/internal/platform/constants"
)

// Connection limits. Session traffic is one small command per request.
const (
	poolSize     = 10
	minIdleConns = 2
	maxIdleConns = 5

	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// SessionKey is the one formatter for a user's session entry: the decimal
// user id under the session prefix.
func SessionKey(userID int64) string {
	return constants.RedisPrefixSession + strconv.FormatInt(userID, 10)
}

// NewClient parses redisURL, applies the session cache settings and verifies
// the server answers before returning.
func NewClient(ctx context.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	configure(options)

	client := redis.NewClient(options)
	if err := Ping(ctx, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("session_cache_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
		slog.String("key_prefix", constants.RedisPrefixSession),
	)

	return client, nil
}

// configure tunes options for the session cache.
//
// Commands are never retried: a replayed SET NX after a lost reply would
// report the caller's own fresh session as a conflict. Caller deadlines are
// honored on the socket, so the per-call store timeout bounds every command.
func configure(options *redis.Options) {
	options.ClientName = constants.AppName

	options.PoolSize = poolSize
	options.MinIdleConns = minIdleConns
	options.MaxIdleConns = maxIdleConns

	options.MaxRetries = -1
	options.ContextTimeoutEnabled = true

	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout
}

// Ping reports whether the session cache answers within pingTimeout.
func Ping(ctx context.Context, client *redis.Client) error {
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
