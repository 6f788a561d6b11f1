package media

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRegistry keeps upload records in Redis with a TTL, so abandoned
// uploads age out without a cleanup job.
type RedisRegistry struct {
	client *redis.Client
	prefix string
}

func NewRedisRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{
		client: client,
		prefix: "upload:",
	}
}

func (r *RedisRegistry) key(ref string) string {
	return r.prefix + ref
}

func (r *RedisRegistry) Record(ctx context.Context, ref string, a Asset, ttl time.Duration) error {
	if ref == "" {
		return fmt.Errorf("media: missing upload ref")
	}
	if ttl <= 0 {
		return fmt.Errorf("media: ttl must be positive")
	}

	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("media: failed to marshal asset: %w", err)
	}

	return r.client.Set(ctx, r.key(ref), data, ttl).Err()
}

func (r *RedisRegistry) Resolve(ctx context.Context, ref string) (*Asset, error) {
	val, err := r.client.Get(ctx, r.key(ref)).Result()
	if err == redis.Nil {
		return nil, nil // unknown or expired
	}
	if err != nil {
		return nil, err
	}

	var a Asset
	if err := json.Unmarshal([]byte(val), &a); err != nil {
		return nil, fmt.Errorf("media: failed to unmarshal asset: %w", err)
	}

	return &a, nil
}
