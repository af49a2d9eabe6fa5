package messaging

import (
	"context"
	"sync"

	cachepkg "github.com/campusconnect/collab-hub/internal/infrastructure/persistence/redis"
)

// ══════════════════════════════════════════════════════════════════════════════
// REDIS CLIENT ADAPTER
// ══════════════════════════════════════════════════════════════════════════════

// CacheRedisClient adapts the persistence-layer Redis cache to the
// RedisClient interface expected by RedisEventBus. Closing the adapter
// tears down its subscriptions but leaves the cache connection alone,
// since the cache outlives the bus.
type CacheRedisClient struct {
	cache *cachepkg.Cache

	mu      sync.Mutex
	cancels []context.CancelFunc
}

// NewCacheRedisClient creates a new adapter over the shared Redis cache.
func NewCacheRedisClient(cache *cachepkg.Cache) *CacheRedisClient {
	return &CacheRedisClient{cache: cache}
}

// Publish sends a message to the given channel.
func (c *CacheRedisClient) Publish(ctx context.Context, channel string, message interface{}) error {
	return c.cache.Publish(ctx, channel, message)
}

// Subscribe opens a subscription and pumps received messages into the
// returned channel. The channel is closed when ctx is canceled, the
// adapter is closed, or the underlying subscription drops.
func (c *CacheRedisClient) Subscribe(ctx context.Context, channels ...string) (<-chan RedisMessage, error) {
	ctx, cancel := context.WithCancel(ctx)

	pubsub := c.cache.Subscribe(ctx, channels...)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, err
	}

	c.mu.Lock()
	c.cancels = append(c.cancels, cancel)
	c.mu.Unlock()

	out := make(chan RedisMessage)
	go func() {
		defer close(out)
		defer pubsub.Close()

		in := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-in:
				if !ok {
					return
				}
				select {
				case out <- RedisMessage{Channel: msg.Channel, Payload: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// Close cancels all subscriptions opened through this adapter.
func (c *CacheRedisClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
	return nil
}
