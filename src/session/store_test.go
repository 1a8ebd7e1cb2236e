package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SaveGetDelete(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	s := New("sess-1", "margaret_72")
	require.NoError(t, store.Save(ctx, s))

	got, ok := store.Get(ctx, "sess-1")
	require.True(t, ok)
	assert.Equal(t, "margaret_72", got.PersonaID)

	assert.True(t, store.Exists(ctx, "sess-1"))
	require.NoError(t, store.Delete(ctx, "sess-1"))
	assert.False(t, store.Exists(ctx, "sess-1"))
}

func TestMemoryStore_GetMissReturnsFalse(t *testing.T) {
	store := NewMemoryStore(0)
	_, ok := store.Get(context.Background(), "nonexistent")
	assert.False(t, ok)
}

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisStore(client, "honeypot:session:", time.Hour, zerolog.Nop())
}

func TestRedisStore_SaveAndGetRoundTrips(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	s := New("sess-redis-1", "priya_45")
	s.IntelBuffer.Add(CategoryUPIIds, "scammer@ybl")
	require.NoError(t, store.Save(ctx, s))

	got, ok := store.Get(ctx, "sess-redis-1")
	require.True(t, ok)
	assert.Equal(t, s.SessionID, got.SessionID)
	assert.Contains(t, got.IntelBuffer.Snapshot()[CategoryUPIIds], "scammer@ybl")
}

func TestRedisStore_GetMissReturnsFalse(t *testing.T) {
	store := newTestRedisStore(t)
	_, ok := store.Get(context.Background(), "missing")
	assert.False(t, ok)
}

func TestRedisStore_DeleteRemovesKey(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	s := New("sess-redis-2", "priya_45")
	require.NoError(t, store.Save(ctx, s))
	require.NoError(t, store.Delete(ctx, "sess-redis-2"))

	assert.False(t, store.Exists(ctx, "sess-redis-2"))
}
