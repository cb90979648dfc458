package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/goliatone/go-legaldocs/pkg/records"
)

// RedisCache stores artifacts as JSON strings.
type RedisCache struct {
	client *redis.Client
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (records.GeneratedArtifact, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return records.GeneratedArtifact{}, false, nil
	}
	if err != nil {
		return records.GeneratedArtifact{}, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	var artifact records.GeneratedArtifact
	if err := json.Unmarshal(val, &artifact); err != nil {
		return records.GeneratedArtifact{}, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return artifact, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, artifact records.GeneratedArtifact, ttl time.Duration) error {
	payload, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

func (c *RedisCache) DeleteCompany(ctx context.Context, companyID string) error {
	pattern := companyPrefix(companyID) + "*"
	var cursor uint64
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return fmt.Errorf("cache: scan %s: %w", pattern, err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("cache: delete: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

// Close releases the client.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
