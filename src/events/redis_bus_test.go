package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestRedisBus(t *testing.T) *RedisBus {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisBus(client, zerolog.Nop())
}

func TestRedisBus_PublishSubscribeRoundTrips(t *testing.T) {
	bus := newTestRedisBus(t)

	var mu sync.Mutex
	var got Event
	received := make(chan struct{})

	bus.Subscribe(TypeScamDetected, func(_ context.Context, e Event) error {
		mu.Lock()
		got = e
		mu.Unlock()
		close(received)
		return nil
	})

	// The consumer's first XREAD resolves "$" to the stream's current tip;
	// give it a moment to start blocking before publishing.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, bus.Publish(context.Background(), Event{
		EventType: TypeScamDetected,
		Payload:   map[string]interface{}{"session_id": "sess-1", "confidence": 0.92},
	}))

	select {
	case <-received:
	case <-time.After(6 * time.Second):
		t.Fatal("timed out waiting for redis stream delivery")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, TypeScamDetected, got.EventType)
	require.Equal(t, "sess-1", got.Payload["session_id"])
	require.InDelta(t, 0.92, got.Payload["confidence"], 0.0001)
}
