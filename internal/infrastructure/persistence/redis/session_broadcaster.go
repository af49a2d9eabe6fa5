package redis

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
)

// ══════════════════════════════════════════════════════════════════════════════
// SESSION BROADCASTER
// ══════════════════════════════════════════════════════════════════════════════

// SessionBroadcaster implements chat.Broadcaster over Redis pub/sub.
// One logical channel per session. Delivery is at-least-once and carries
// no ordering guarantee across sessions; subscribers reconcile against
// the store, which remains the source of truth.
type SessionBroadcaster struct {
	cache *Cache
}

// NewSessionBroadcaster creates a new SessionBroadcaster.
func NewSessionBroadcaster(cache *Cache) *SessionBroadcaster {
	return &SessionBroadcaster{cache: cache}
}

// Publish sends an event to the session's channel.
func (b *SessionBroadcaster) Publish(ctx context.Context, sessionID chat.SessionID, event chat.SessionEvent) error {
	return b.cache.Publish(ctx, SessionChannel(sessionID.String()), event)
}

// Subscribe opens a subscription on the session's channel.
// The returned subscription must be unsubscribed when the owning view
// is torn down; unsubscribing twice is safe.
func (b *SessionBroadcaster) Subscribe(ctx context.Context, sessionID chat.SessionID) (chat.Subscription, error) {
	pubsub := b.cache.Subscribe(ctx, SessionChannel(sessionID.String()))

	// Force the subscription to be established before returning, so a
	// publish right after Subscribe cannot be lost.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	sub := &sessionSubscription{
		pubsub: pubsub,
		events: make(chan chat.SessionEvent, 16),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

// sessionSubscription adapts a redis.PubSub to chat.Subscription.
type sessionSubscription struct {
	pubsub *redis.PubSub
	events chan chat.SessionEvent
	done   chan struct{}
	once   sync.Once
}

// pump forwards pub/sub payloads to the events channel until the
// subscription is closed. Malformed payloads are skipped.
func (s *sessionSubscription) pump() {
	defer close(s.events)
	ch := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event chat.SessionEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			select {
			case s.events <- event:
			case <-s.done:
				return
			}
		}
	}
}

// Events returns the channel of incoming session events.
func (s *sessionSubscription) Events() <-chan chat.SessionEvent {
	return s.events
}

// Unsubscribe closes the subscription. Idempotent.
func (s *sessionSubscription) Unsubscribe() {
	s.once.Do(func() {
		close(s.done)
		_ = s.pubsub.Close()
	})
}
