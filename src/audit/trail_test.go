package audit

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/perplext/cipherhoneypot/src/events"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer guards bytes.Buffer for concurrent writes from the event bus's
// per-subscriber goroutines and reads from the test itself.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) snapshot() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.buf.Bytes()...)
}

func readEntries(t *testing.T, buf *syncBuffer) []Entry {
	t.Helper()
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(buf.snapshot()))
	for scanner.Scan() {
		var e Entry
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &e))
		entries = append(entries, e)
	}
	return entries
}

func TestTrail_RecordSignsAndChains(t *testing.T) {
	buf := &syncBuffer{}
	trail := New(buf, []byte("signing-secret"))
	bus := events.NewMemoryBus(zerolog.Nop())
	trail.Subscribe(bus)

	require.NoError(t, bus.Publish(context.Background(), events.Event{
		EventType: events.TypeScamDetected,
		Payload:   map[string]interface{}{"session_id": "sess-1"},
	}))
	require.NoError(t, bus.Publish(context.Background(), events.Event{
		EventType: events.TypeEngagementComplete,
		Payload:   map[string]interface{}{"session_id": "sess-1"},
	}))

	require.Eventually(t, func() bool {
		return bytes.Count(buf.snapshot(), []byte("\n")) == 2
	}, time.Second, 10*time.Millisecond)

	entries := readEntries(t, buf)
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].Signature)
	assert.NotEqual(t, entries[0].Signature, entries[1].Signature)

	assert.Equal(t, -1, Verify(entries, []byte("signing-secret")))
}

func TestTrail_VerifyDetectsTamperedPayload(t *testing.T) {
	buf := &syncBuffer{}
	trail := New(buf, []byte("signing-secret"))
	bus := events.NewMemoryBus(zerolog.Nop())
	trail.Subscribe(bus)

	require.NoError(t, bus.Publish(context.Background(), events.Event{
		EventType: events.TypeScamDetected,
		Payload:   map[string]interface{}{"session_id": "sess-1"},
	}))
	require.NoError(t, bus.Publish(context.Background(), events.Event{
		EventType: events.TypeEngagementComplete,
		Payload:   map[string]interface{}{"session_id": "sess-1"},
	}))

	require.Eventually(t, func() bool {
		return bytes.Count(buf.snapshot(), []byte("\n")) == 2
	}, time.Second, 10*time.Millisecond)

	entries := readEntries(t, buf)
	require.Len(t, entries, 2)

	entries[0].Payload["session_id"] = "tampered"

	assert.Equal(t, 0, Verify(entries, []byte("signing-secret")))
}

func TestTrail_VerifyDetectsWrongSigningKey(t *testing.T) {
	buf := &syncBuffer{}
	trail := New(buf, []byte("signing-secret"))
	bus := events.NewMemoryBus(zerolog.Nop())
	trail.Subscribe(bus)

	require.NoError(t, bus.Publish(context.Background(), events.Event{
		EventType: events.TypeScamDetected,
		Payload:   map[string]interface{}{"session_id": "sess-1"},
	}))

	require.Eventually(t, func() bool {
		return len(buf.snapshot()) > 0
	}, time.Second, 10*time.Millisecond)

	entries := readEntries(t, buf)
	require.Len(t, entries, 1)

	assert.Equal(t, 0, Verify(entries, []byte("wrong-secret")))
}

func TestTrail_NoSigningKeyWritesUnsignedEntries(t *testing.T) {
	buf := &syncBuffer{}
	trail := New(buf, nil)
	bus := events.NewMemoryBus(zerolog.Nop())
	trail.Subscribe(bus)

	require.NoError(t, bus.Publish(context.Background(), events.Event{
		EventType: events.TypeEngagementTurn,
		Payload:   map[string]interface{}{"session_id": "sess-1"},
	}))

	require.Eventually(t, func() bool {
		return len(buf.snapshot()) > 0
	}, time.Second, 10*time.Millisecond)

	entries := readEntries(t, buf)
	require.Len(t, entries, 1)
	assert.Empty(t, entries[0].Signature)
}
