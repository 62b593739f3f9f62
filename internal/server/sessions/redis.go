package sessions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentfinder/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "rentfinder:"
	dialTimeout = 5 * time.Second
)

func roleKey(sessionID string) string { return keyPrefix + "session:" + sessionID + ":role" }
func revokedKey(sessionID string) string { return keyPrefix + "revoked:" + sessionID }
func limitKey(key string) string { return keyPrefix + "limit:" + key }

// RedisRegistry shares session state between server instances.
type RedisRegistry struct {
	client redis.Cmdable
	closer func() error
}

// NewRedisRegistry connects to addr and pings it before returning.
func NewRedisRegistry(ctx context.Context, addr, password string, db int) (*RedisRegistry, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}

	return &RedisRegistry{client: client, closer: client.Close}, nil
}

func (r *RedisRegistry) CacheRole(ctx context.Context, sessionID string, role models.Role, ttl time.Duration) error {
	if err := r.client.Set(ctx, roleKey(sessionID), string(role), ttl).Err(); err != nil {
		return fmt.Errorf("cache role: %w", err)
	}
	return nil
}

func (r *RedisRegistry) CachedRole(ctx context.Context, sessionID string) (models.Role, bool, error) {
	val, err := r.client.Get(ctx, roleKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get cached role: %w", err)
	}
	return models.Role(val), true, nil
}

func (r *RedisRegistry) Revoke(ctx context.Context, sessionID string, ttl time.Duration) error {
	if err := r.client.Del(ctx, roleKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("drop cached role: %w", err)
	}
	if err := r.client.Set(ctx, revokedKey(sessionID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (r *RedisRegistry) Revoked(ctx context.Context, sessionID string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKey(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("check revocation: %w", err)
	}
	return n > 0, nil
}

// Allow is a fixed-window counter: the first hit in a window sets its expiry.
func (r *RedisRegistry) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	k := limitKey(key)
	n, err := r.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := r.client.Expire(ctx, k, window).Err(); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}
	return n <= int64(limit), nil
}

func (r *RedisRegistry) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
