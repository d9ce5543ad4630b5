package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultKeyPrefix namespaces the tag keys dropped on invalidation.
	DefaultKeyPrefix = "backoffice:cache:"
	// DefaultChannel is the pub/sub channel invalidation signals fan out on.
	DefaultChannel = "backoffice.cache.invalidate"
)

// RedisOption configures the redis invalidator.
type RedisOption func(*RedisInvalidator)

// WithKeyPrefix overrides the tag key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisInvalidator) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithChannel overrides the pub/sub channel name. An empty channel disables
// the broadcast and only the keyed entries are dropped.
func WithChannel(channel string) RedisOption {
	return func(r *RedisInvalidator) {
		r.channel = channel
	}
}

// RedisInvalidator drops tag-scoped cache keys and broadcasts the tag set so
// external read caches can refresh. Deleting an absent key is a no-op, which
// keeps the contract idempotent.
type RedisInvalidator struct {
	client  redis.UniversalClient
	prefix  string
	channel string
}

// NewRedisInvalidator wraps an established go-redis client.
func NewRedisInvalidator(client redis.UniversalClient, opts ...RedisOption) *RedisInvalidator {
	inv := &RedisInvalidator{
		client:  client,
		prefix:  DefaultKeyPrefix,
		channel: DefaultChannel,
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Invalidate deletes the keyed entries for each tag and publishes the tag
// names on the configured channel.
func (r *RedisInvalidator) Invalidate(ctx context.Context, tags ...string) error {
	if r == nil || r.client == nil {
		return nil
	}
	normalized := NormalizeTags(tags)
	if len(normalized) == 0 {
		return nil
	}

	keys := make([]string, len(normalized))
	for i, tag := range normalized {
		keys[i] = r.prefix + tag
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache: redis invalidation failed: %w", err)
	}

	if r.channel == "" {
		return nil
	}
	for _, tag := range normalized {
		if err := r.client.Publish(ctx, r.channel, tag).Err(); err != nil {
			return fmt.Errorf("cache: redis publish failed: %w", err)
		}
	}
	return nil
}
