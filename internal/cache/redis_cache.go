package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/farizks7575/chat-app/internal/domain"
)

// RedisConfig holds redis connection settings for the conversation cache.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// RedisConversationCache implements ConversationCache on redis.
type RedisConversationCache struct {
	client *redis.Client
	prefix string
}

// NewRedisConversationCache connects to redis and returns a cache.
func NewRedisConversationCache(cfg RedisConfig, prefix string) (*RedisConversationCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisConversationCache{client: client, prefix: prefix}, nil
}

func (c *RedisConversationCache) key(userA, userB string) string {
	// Order the pair so both directions share one entry.
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%s:%s:%s", c.prefix, userA, userB)
}

// Get returns the cached conversation or ErrCacheMiss.
func (c *RedisConversationCache) Get(ctx context.Context, userA, userB string) ([]domain.Message, error) {
	data, err := c.client.Get(ctx, c.key(userA, userB)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var msgs []domain.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache data: %w", err)
	}
	return msgs, nil
}

// Set stores a conversation with a TTL.
func (c *RedisConversationCache) Set(ctx context.Context, userA, userB string, msgs []domain.Message, ttl time.Duration) error {
	data, err := json.Marshal(msgs)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	if err := c.client.Set(ctx, c.key(userA, userB), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}
	return nil
}

// Invalidate drops the cached conversation for a pair.
func (c *RedisConversationCache) Invalidate(ctx context.Context, userA, userB string) error {
	return c.client.Del(ctx, c.key(userA, userB)).Err()
}

// Close closes the redis connection.
func (c *RedisConversationCache) Close() error {
	return c.client.Close()
}

var _ ConversationCache = (*RedisConversationCache)(nil)
