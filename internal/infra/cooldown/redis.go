package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/Changwoon-overview/Socialtalk/internal/domain/notification"

	"github.com/redis/go-redis/v9"
)

var _ notification.CooldownStore = (*RedisStore)(nil)

// RedisStore keeps cooldown flags as Redis keys with a TTL.
// Acquire uses SET NX so concurrent callers cannot both claim the flag.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis-backed cooldown store.
func NewRedisStore(redisAddr, password string, db int) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: password,
		DB:       db,
	})

	return NewRedisStoreWithClient(client)
}

// NewRedisStoreWithClient wraps an existing Redis client.
func NewRedisStoreWithClient(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "socialtalk:cooldown:",
	}
}

// Active reports whether the flag exists.
func (s *RedisStore) Active(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("checking cooldown %s: %w", key, err)
	}
	return n > 0, nil
}

// Acquire sets the flag for ttl unless it is already set.
func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.prefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setting cooldown %s: %w", key, err)
	}
	return ok, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
