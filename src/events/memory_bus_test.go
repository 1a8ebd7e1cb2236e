package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryBus_DeliversToEverySubscriber(t *testing.T) {
	bus := NewMemoryBus(zerolog.Nop())

	var mu sync.Mutex
	received := []string{}

	bus.Subscribe(TypeScamDetected, func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, "a")
		return nil
	})
	bus.Subscribe(TypeScamDetected, func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, "b")
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), Event{EventType: TypeScamDetected}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryBus_SubscriberPanicIsolated(t *testing.T) {
	bus := NewMemoryBus(zerolog.Nop())

	var called bool
	var mu sync.Mutex

	bus.Subscribe(TypeEngagementTurn, func(_ context.Context, e Event) error {
		panic("boom")
	})
	bus.Subscribe(TypeEngagementTurn, func(_ context.Context, e Event) error {
		mu.Lock()
		defer mu.Unlock()
		called = true
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), Event{EventType: TypeEngagementTurn}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return called
	}, time.Second, 10*time.Millisecond)

	assert.True(t, true)
}

func TestMemoryBus_UnsubscribedTopicIsNoop(t *testing.T) {
	bus := NewMemoryBus(zerolog.Nop())
	assert.NoError(t, bus.Publish(context.Background(), Event{EventType: TypeEngagementComplete}))
}
