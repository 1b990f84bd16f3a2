package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrCacheMiss is returned by ZoneCache.Get when nothing is cached.
var ErrCacheMiss = errors.New("cache miss")

// ZoneCache remembers a user's IANA zone name.
type ZoneCache interface {
	Get(ctx context.Context, userID uuid.UUID) (string, error)
	Set(ctx context.Context, userID uuid.UUID, zone string) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

// RedisZoneCache stores zone names under "<prefix>:<user id>".
type RedisZoneCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisZoneCache(client *redis.Client, ttl time.Duration) *RedisZoneCache {
	return &RedisZoneCache{client: client, ttl: ttl, prefix: "planner:tz"}
}

func (c *RedisZoneCache) key(id uuid.UUID) string {
	return c.prefix + ":" + id.String()
}

func (c *RedisZoneCache) Get(ctx context.Context, userID uuid.UUID) (string, error) {
	val, err := c.client.Get(ctx, c.key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		return "", fmt.Errorf("failed to get from cache: %w", err)
	}
	return val, nil
}

func (c *RedisZoneCache) Set(ctx context.Context, userID uuid.UUID, zone string) error {
	if err := c.client.Set(ctx, c.key(userID), zone, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

func (c *RedisZoneCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete from cache: %w", err)
	}
	return nil
}

// noCache never remembers anything.
type noCache struct{}

func (noCache) Get(context.Context, uuid.UUID) (string, error) { return "", ErrCacheMiss }
func (noCache) Set(context.Context, uuid.UUID, string) error   { return nil }
func (noCache) Delete(context.Context, uuid.UUID) error        { return nil }
