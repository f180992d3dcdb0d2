// Package cache holds the Redis-backed identity cache used by the bearer
// token resolver. Entries expire after a short TTL, which bounds how long a
// deactivated account can keep resolving.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/amaralkaff/lsa-backend/internal/model"
)

const keyPrefix = "lsa:identity:"

// IdentityCache maps a token subject to the user record it resolved to.
// The password hash is never cached because model.User omits it from JSON.
type IdentityCache struct {
	db  *redis.Client
	ttl time.Duration
}

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	const op = "cache.NewRedisClient"
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		MaxRetries:   2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return client, nil
}

// NewIdentityCache wraps an existing client.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	return &IdentityCache{db: client, ttl: ttl}
}

// Get returns the cached user for subject. A miss is (nil, false, nil).
func (c *IdentityCache) Get(ctx context.Context, subject string) (*model.User, bool, error) {
	const op = "cache.Get"
	val, err := c.db.Get(ctx, keyPrefix+subject).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	var u model.User
	if err := json.Unmarshal(val, &u); err != nil {
		return nil, false, fmt.Errorf("%s: %w", op, err)
	}
	return &u, true, nil
}

// Set stores the user under its email for the configured TTL.
func (c *IdentityCache) Set(ctx context.Context, u *model.User) error {
	const op = "cache.Set"
	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.db.Set(ctx, keyPrefix+u.Email, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate drops the entry for subject.
func (c *IdentityCache) Invalidate(ctx context.Context, subject string) error {
	return c.db.Del(ctx, keyPrefix+subject).Err()
}
