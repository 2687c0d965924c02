// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	redisstore "github.com/taibuivan/tablefinder/internal/platform/redis"
)

// RedisSessionCache implements SessionCache using Redis.
type RedisSessionCache struct {
	client *redis.Client
}

// NewSessionCache creates a new Redis-backed SessionCache.
func NewSessionCache(client *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{client: client}
}

/*
Create stores the token with SET NX so two concurrent logins cannot both win.

Parameters:
  - context: context.Context
  - userID: int64
  - token: string
  - ttl: time.Duration

Returns:
  - bool: true if this call created the session
  - error: Execution errors
*/
func (cache *RedisSessionCache) Create(context context.Context, userID int64, token string, ttl time.Duration) (bool, error) {
	created, err := cache.client.SetNX(context, redisstore.SessionKey(userID), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis_session_create_failed: %w", err)
	}
	return created, nil
}

/*
Get retrieves the live token for a user.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - string: Stored token
  - error: ErrSessionNotFound if absent or expired, or connectivity errors
*/
func (cache *RedisSessionCache) Get(context context.Context, userID int64) (string, error) {
	token, err := cache.client.Get(context, redisstore.SessionKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrSessionNotFound
		}
		return "", fmt.Errorf("redis_session_get_failed: %w", err)
	}
	return token, nil
}

/*
Delete removes the session key.

Parameters:
  - context: context.Context
  - userID: int64

Returns:
  - bool: whether a key was removed
  - error: Deletion failures
*/
func (cache *RedisSessionCache) Delete(context context.Context, userID int64) (bool, error) {
	removed, err := cache.client.Del(context, redisstore.SessionKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return removed > 0, nil
}
