package events

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryBus fans a publish out to every subscriber on its own goroutine.
// Delivery is best-effort and not durable across restarts; a handler panic
// or error is isolated so it never blocks or breaks sibling subscribers.
type MemoryBus struct {
	mu          sync.RWMutex
	subscribers map[Type][]Handler
	log         zerolog.Logger
}

// NewMemoryBus returns an empty in-memory bus.
func NewMemoryBus(log zerolog.Logger) *MemoryBus {
	return &MemoryBus{subscribers: make(map[Type][]Handler), log: log}
}

func (b *MemoryBus) Subscribe(eventType Type, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], h)
}

func (b *MemoryBus) Publish(ctx context.Context, e Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[e.EventType]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		go b.safeInvoke(ctx, h, e)
	}
	return nil
}

func (b *MemoryBus) safeInvoke(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("event_type", string(e.EventType)).Msg("event subscriber panicked")
		}
	}()
	if err := h(ctx, e); err != nil {
		b.log.Warn().Err(err).Str("event_type", string(e.EventType)).Msg("event subscriber failed")
	}
}
