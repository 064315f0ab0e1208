package cache

import (
	"context"
	"errors"
	"time"

	"github.com/farizks7575/chat-app/internal/domain"
)

// ErrCacheMiss is returned when a conversation is not cached.
var ErrCacheMiss = errors.New("cache miss")

// ConversationCache caches the full message history of a user pair. The
// pair key is unordered: (a, b) and (b, a) hit the same entry.
type ConversationCache interface {
	Get(ctx context.Context, userA, userB string) ([]domain.Message, error)
	Set(ctx context.Context, userA, userB string, msgs []domain.Message, ttl time.Duration) error
	Invalidate(ctx context.Context, userA, userB string) error
	Close() error
}
