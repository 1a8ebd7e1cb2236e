package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// Store is the polymorphic persistence contract: get, save, exists, delete.
// All operations are asynchronous (context-bounded). get returns a clean
// "absent" on miss and on transport error; the caller decides whether that
// warrants creating a new session.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Session, bool)
	Save(ctx context.Context, s *Session) error
	Exists(ctx context.Context, sessionID string) bool
	Delete(ctx context.Context, sessionID string) error
}

// MemoryStore is the in-process implementation: TTL is checked only on read
// (an expired session reads as absent but stays in memory), and nothing
// survives a restart.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]*Session
	ttl  time.Duration
}

// NewMemoryStore returns an empty in-memory store. ttl of zero disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{data: make(map[string]*Session), ttl: ttl}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.data[sessionID]
	if !ok {
		return nil, false
	}
	if m.ttl > 0 && time.Since(s.UpdatedAt) > m.ttl {
		return nil, false
	}
	clone := *s
	return &clone, true
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	s.Touch()
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.data[s.SessionID] = &clone
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, sessionID string) bool {
	_, ok := m.Get(ctx, sessionID)
	return ok
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, sessionID)
	return nil
}

// RedisStore persists sessions as JSON under prefix+sessionID with a TTL
// refreshed on every save, matching the honeypot:session: key convention.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	log    zerolog.Logger
}

// NewRedisStore constructs a store against an existing client.
func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration, log zerolog.Logger) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl, log: log}
}

func (r *RedisStore) key(sessionID string) string {
	return r.prefix + sessionID
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Session, bool) {
	raw, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Str("session_id", sessionID).Msg("session store get failed")
		}
		return nil, false
	}
	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID).Msg("session store corrupt record")
		return nil, false
	}
	return &s, true
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	s.Touch()
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.SessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisStore) Exists(ctx context.Context, sessionID string) bool {
	n, err := r.client.Exists(ctx, r.key(sessionID)).Result()
	if err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID).Msg("session store exists failed")
		return false
	}
	return n > 0
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	return r.client.Del(ctx, r.key(sessionID)).Err()
}
