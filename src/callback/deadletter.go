package callback

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisDeadLetter persists callback payloads that exhausted every retry
// attempt to a Redis list, for later manual or scheduled redelivery.
type RedisDeadLetter struct {
	client *redis.Client
	key    string
}

// NewRedisDeadLetter returns a dead-letter sink writing to keyPrefix+"callback:dead".
func NewRedisDeadLetter(client *redis.Client, keyPrefix string) *RedisDeadLetter {
	return &RedisDeadLetter{client: client, key: keyPrefix + "callback:dead"}
}

// Enqueue appends p to the dead-letter list.
func (d *RedisDeadLetter) Enqueue(ctx context.Context, p Payload) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("deadletter: marshal payload: %w", err)
	}
	if err := d.client.RPush(ctx, d.key, raw).Err(); err != nil {
		return fmt.Errorf("deadletter: rpush: %w", err)
	}
	return nil
}

// Drain pops up to limit queued payloads for redelivery, oldest first.
func (d *RedisDeadLetter) Drain(ctx context.Context, limit int) ([]Payload, error) {
	out := make([]Payload, 0, limit)
	for i := 0; i < limit; i++ {
		raw, err := d.client.LPop(ctx, d.key).Result()
		if err == redis.Nil {
			break
		}
		if err != nil {
			return out, fmt.Errorf("deadletter: lpop: %w", err)
		}
		var p Payload
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
