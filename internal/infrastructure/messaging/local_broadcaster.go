package messaging

import (
	"context"
	"sync"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
)

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL BROADCASTER
// ══════════════════════════════════════════════════════════════════════════════

// LocalBroadcaster implements chat.Broadcaster in process memory.
// Suitable for single-instance deployments and testing; multi-instance
// deployments use the Redis session broadcaster so events reach
// subscribers on other instances.
type LocalBroadcaster struct {
	mu   sync.RWMutex
	subs map[chat.SessionID][]*localSubscription
}

// NewLocalBroadcaster creates a new LocalBroadcaster.
func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{
		subs: make(map[chat.SessionID][]*localSubscription),
	}
}

// Publish delivers the event to every subscriber of the session.
// Subscribers with a full buffer are skipped rather than blocked:
// they reconcile against the store on the next fetch anyway.
func (b *LocalBroadcaster) Publish(_ context.Context, sessionID chat.SessionID, event chat.SessionEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[sessionID] {
		select {
		case sub.events <- event:
		default:
		}
	}
	return nil
}

// Subscribe opens a subscription on the session's channel.
func (b *LocalBroadcaster) Subscribe(_ context.Context, sessionID chat.SessionID) (chat.Subscription, error) {
	sub := &localSubscription{
		broadcaster: b,
		sessionID:   sessionID,
		events:      make(chan chat.SessionEvent, 16),
	}

	b.mu.Lock()
	b.subs[sessionID] = append(b.subs[sessionID], sub)
	b.mu.Unlock()

	return sub, nil
}

type localSubscription struct {
	broadcaster *LocalBroadcaster
	sessionID   chat.SessionID
	events      chan chat.SessionEvent
	once        sync.Once
}

// Events returns the channel of incoming session events.
func (s *localSubscription) Events() <-chan chat.SessionEvent {
	return s.events
}

// Unsubscribe removes the subscription and closes its channel. Idempotent.
func (s *localSubscription) Unsubscribe() {
	s.once.Do(func() {
		b := s.broadcaster
		b.mu.Lock()
		subs := b.subs[s.sessionID]
		for i, sub := range subs {
			if sub == s {
				b.subs[s.sessionID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(b.subs[s.sessionID]) == 0 {
			delete(b.subs, s.sessionID)
		}
		b.mu.Unlock()

		close(s.events)
	})
}
