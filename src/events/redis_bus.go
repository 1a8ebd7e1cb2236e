package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

const (
	streamKeyPrefix = "cipher:events:"
	streamMaxLen    = 1000
	readBlock       = 5 * time.Second
	readCount       = 10
)

// RedisBus is the durable stream implementation: publish appends to a
// per-topic stream capped at streamMaxLen entries; subscribe spawns a
// long-lived consumer reading from the tail. At-least-once delivery for
// subscribers registered before the stream truncates past their cursor.
type RedisBus struct {
	client *redis.Client
	log    zerolog.Logger

	mu          sync.Mutex
	subscribers map[Type][]Handler
	started     map[Type]bool
}

// NewRedisBus returns a bus backed by an existing Redis client. Consuming
// begins per topic when the first subscriber for that topic registers.
func NewRedisBus(client *redis.Client, log zerolog.Logger) *RedisBus {
	return &RedisBus{
		client:      client,
		log:         log,
		subscribers: make(map[Type][]Handler),
		started:     make(map[Type]bool),
	}
}

func streamKey(t Type) string {
	return streamKeyPrefix + string(t)
}

func (b *RedisBus) Publish(ctx context.Context, e Event) error {
	fields := make(map[string]interface{}, len(e.Payload))
	for k, v := range e.Payload {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal event field %s: %w", k, err)
		}
		fields[k] = string(raw)
	}
	return b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: streamKey(e.EventType),
		MaxLen: streamMaxLen,
		Approx: true,
		Values: fields,
	}).Err()
}

// Subscribe registers h for eventType and, on first subscriber for that
// topic, starts a background consumer goroutine reading new entries.
func (b *RedisBus) Subscribe(eventType Type, h Handler) {
	b.mu.Lock()
	b.subscribers[eventType] = append(b.subscribers[eventType], h)
	alreadyStarted := b.started[eventType]
	b.started[eventType] = true
	b.mu.Unlock()

	if !alreadyStarted {
		go b.consume(eventType)
	}
}

func (b *RedisBus) consume(eventType Type) {
	ctx := context.Background()
	key := streamKey(eventType)
	lastID := "$"

	for {
		streams, err := b.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{key, lastID},
			Count:   readCount,
			Block:   readBlock,
		}).Result()
		if err != nil {
			if err != redis.Nil {
				b.log.Warn().Err(err).Str("stream", key).Msg("event stream read failed")
				time.Sleep(time.Second)
			}
			continue
		}
		for _, stream := range streams {
			for _, msg := range stream.Messages {
				lastID = msg.ID
				b.dispatch(ctx, eventType, msg)
			}
		}
	}
}

func (b *RedisBus) dispatch(ctx context.Context, eventType Type, msg redis.XMessage) {
	payload := make(map[string]interface{}, len(msg.Values))
	for k, v := range msg.Values {
		s, ok := v.(string)
		if !ok {
			payload[k] = v
			continue
		}
		var decoded interface{}
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			payload[k] = decoded
		} else {
			payload[k] = s
		}
	}
	e := Event{EventType: eventType, Payload: payload}

	b.mu.Lock()
	handlers := append([]Handler(nil), b.subscribers[eventType]...)
	b.mu.Unlock()

	for _, h := range handlers {
		go b.safeInvoke(ctx, h, e)
	}
}

func (b *RedisBus) safeInvoke(ctx context.Context, h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Error().Interface("panic", r).Str("event_type", string(e.EventType)).Msg("event subscriber panicked")
		}
	}()
	if err := h(ctx, e); err != nil {
		b.log.Warn().Err(err).Str("event_type", string(e.EventType)).Msg("event subscriber failed")
	}
}
