package messaging

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/collab-hub/internal/domain/chat"
)

func TestLocalBroadcaster_PublishReachesSubscribers(t *testing.T) {
	b := NewLocalBroadcaster()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "sess-1")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	other, err := b.Subscribe(ctx, "sess-2")
	require.NoError(t, err)
	defer other.Unsubscribe()

	event := chat.SessionEvent{Kind: chat.EventKindMessage, SessionID: "sess-1"}
	require.NoError(t, b.Publish(ctx, "sess-1", event))

	got := <-sub.Events()
	assert.Equal(t, chat.EventKindMessage, got.Kind)
	assert.Equal(t, chat.SessionID("sess-1"), got.SessionID)

	// The other session's subscriber sees nothing.
	select {
	case e := <-other.Events():
		t.Fatalf("unexpected event on sess-2: %+v", e)
	default:
	}
}

func TestLocalBroadcaster_UnsubscribeClosesChannel(t *testing.T) {
	b := NewLocalBroadcaster()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "sess-1")
	require.NoError(t, err)

	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent

	_, open := <-sub.Events()
	assert.False(t, open)

	// Publishing to a session with no subscribers is a no-op.
	assert.NoError(t, b.Publish(ctx, "sess-1", chat.SessionEvent{Kind: chat.EventKindRead, SessionID: "sess-1"}))
}

func TestLocalBroadcaster_SlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewLocalBroadcaster()
	ctx := context.Background()

	sub, err := b.Subscribe(ctx, "sess-1")
	require.NoError(t, err)
	defer sub.Unsubscribe()

	// Overflow the buffer; Publish must not block.
	for i := 0; i < 40; i++ {
		require.NoError(t, b.Publish(ctx, "sess-1", chat.SessionEvent{Kind: chat.EventKindMessage, SessionID: "sess-1"}))
	}
}
