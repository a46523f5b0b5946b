package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-crud-service/internal/domain/user"
)

// KeyPrefix namespaces user entries in Redis.
const KeyPrefix = "user:"

// UserCache defines the interface for user caching operations.
type UserCache interface {
	// Get retrieves a user from cache by ID.
	// Returns nil if user is not found in cache.
	Get(ctx context.Context, id int64) (*domain.User, error)

	// Set stores a user in cache with the configured TTL.
	Set(ctx context.Context, u domain.User) error

	// SetMany stores several users in one round trip.
	SetMany(ctx context.Context, users []domain.User) error
}

// RedisUserCache implements UserCache using Redis as the backing store.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a new Redis-backed user cache.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("%s%d", KeyPrefix, id)
}

// Get retrieves a user from Redis cache.
func (c *RedisUserCache) Get(ctx context.Context, id int64) (*domain.User, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.Int64("user_id", id))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get user %d: %w", id, err)
	}

	var u domain.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("cache decode user %d: %w", id, err)
	}

	c.log.Debug("cache hit", zap.Int64("user_id", id))
	return &u, nil
}

// Set stores a user in Redis cache with TTL.
func (c *RedisUserCache) Set(ctx context.Context, u domain.User) error {
	if !u.IsPersisted() {
		return fmt.Errorf("cannot cache user without id")
	}

	data, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("cache encode user %d: %w", u.ID, err)
	}

	if err := c.client.Set(ctx, cacheKey(u.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set user %d: %w", u.ID, err)
	}

	c.log.Debug("cached user", zap.Int64("user_id", u.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// SetMany pipelines one SET per user.
func (c *RedisUserCache) SetMany(ctx context.Context, users []domain.User) error {
	if len(users) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	for _, u := range users {
		if !u.IsPersisted() {
			continue
		}
		data, err := json.Marshal(u)
		if err != nil {
			return fmt.Errorf("cache encode user %d: %w", u.ID, err)
		}
		pipe.Set(ctx, cacheKey(u.ID), data, c.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("cache set %d users: %w", len(users), err)
	}

	c.log.Debug("cached users", zap.Int("count", len(users)))
	return nil
}
