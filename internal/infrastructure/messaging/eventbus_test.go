package messaging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusconnect/collab-hub/internal/domain/shared"
)

func syncBusConfig() InMemoryEventBusConfig {
	return InMemoryEventBusConfig{
		AsyncMode:     false,
		EnableMetrics: true,
	}
}

func TestInMemoryEventBus_PublishRoutesByType(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	var got []shared.EventType
	err := bus.Subscribe(shared.EventMessageSent, func(e shared.Event) error {
		got = append(got, e.EventType())
		return nil
	})
	require.NoError(t, err)

	event := shared.NewMessageSentEvent("sess-1", "m1", "alice", "hi", time.Now())
	require.NoError(t, bus.Publish(event))

	// An event of another type must not reach the handler.
	other := shared.NewMessagesReadEvent("sess-1", "bob", 1)
	require.NoError(t, bus.Publish(other))

	assert.Equal(t, []shared.EventType{shared.EventMessageSent}, got)
}

func TestInMemoryEventBus_SubscribeAllSeesEverything(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	count := 0
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		count++
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewMessageSentEvent("s", "m", "u", "x", time.Now())))
	require.NoError(t, bus.Publish(shared.NewMessagesReadEvent("s", "u", 2)))

	assert.Equal(t, 2, count)
}

func TestInMemoryEventBus_NilHandlerRejected(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	assert.Error(t, bus.Subscribe(shared.EventMessageSent, nil))
	assert.Error(t, bus.SubscribeAll(nil))
}

func TestInMemoryEventBus_ClosedBusRefusesPublish(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	require.NoError(t, bus.Close())

	err := bus.Publish(shared.NewMessagesReadEvent("s", "u", 1))
	assert.ErrorIs(t, err, ErrEventBusClosed)

	// Closing twice is safe.
	assert.NoError(t, bus.Close())
}

func TestInMemoryEventBus_AsyncModeWaitsOnClose(t *testing.T) {
	bus := NewInMemoryEventBus(InMemoryEventBusConfig{
		AsyncMode:      true,
		WorkerPoolSize: 2,
		EnableMetrics:  true,
	})

	var mu sync.Mutex
	handled := 0
	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		mu.Lock()
		handled++
		mu.Unlock()
		return nil
	}))

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(shared.NewMessagesReadEvent("s", "u", 1)))
	}

	// Close waits for in-flight handlers.
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, handled)
}

func TestInMemoryEventBus_PanickingHandlerIsContained(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error {
		panic("boom")
	}))

	delivered := 0
	require.NoError(t, bus.Subscribe(shared.EventMessageSent, func(shared.Event) error {
		delivered++
		return nil
	}))

	// A panicking subscriber must not break publishing or starve
	// well-behaved handlers.
	require.NoError(t, bus.Publish(shared.NewMessageSentEvent("s", "m", "u", "x", time.Now())))
	require.NoError(t, bus.Publish(shared.NewMessageSentEvent("s", "m2", "u", "y", time.Now())))
	assert.Equal(t, 2, delivered)

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(4), snap.TotalHandlerExecs)
	assert.Equal(t, 0.5, snap.HandlerSuccessRate)
}

func TestEventBusMetrics_Snapshot(t *testing.T) {
	bus := NewInMemoryEventBus(syncBusConfig())
	defer bus.Close()

	require.NoError(t, bus.SubscribeAll(func(shared.Event) error { return nil }))
	require.NoError(t, bus.Publish(shared.NewMessagesReadEvent("s", "u", 1)))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(1), snap.TotalHandlerExecs)
	assert.Equal(t, 1.0, snap.HandlerSuccessRate)
}
