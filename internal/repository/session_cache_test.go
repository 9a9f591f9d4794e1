package repository

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/schoolhub-backend/internal/config"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

type memSessions struct {
	mu      sync.Mutex
	byToken map[string]model.Session
	finds   int
	nextID  int
}

func newMemSessions() *memSessions {
	return &memSessions{byToken: map[string]model.Session{}}
}

func (m *memSessions) FindByToken(_ context.Context, token string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	s, ok := m.byToken[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) Create(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.byToken[s.Token] = *s
	return nil
}

func (m *memSessions) UpdateExpiry(_ context.Context, s *model.Session, expiredAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.byToken[s.Token]
	if !ok {
		return ErrNotFound
	}
	stored.ExpiredAt = expiredAt
	m.byToken[s.Token] = stored
	s.ExpiredAt = expiredAt
	return nil
}

func (m *memSessions) Delete(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byToken[s.Token]; !ok {
		return ErrNotFound
	}
	delete(m.byToken, s.Token)
	return nil
}

func (m *memSessions) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for tok, s := range m.byToken {
		if !now.Before(s.ExpiredAt) {
			delete(m.byToken, tok)
			n++
		}
	}
	return n, nil
}

func newCachedStore(t *testing.T) (*CachedSessionStore, *memSessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	backend := newMemSessions()
	return NewCachedSessionStore(backend, rdb, zerolog.New(io.Discard)), backend, mr
}

func TestCachedSessionStoreReadThrough(t *testing.T) {
	ctx := context.Background()
	store, backend, mr := newCachedStore(t)

	s := &model.Session{UserID: 7, Token: "tok", ExpiredAt: time.Now().Add(time.Hour)}
	require.NoError(t, backend.Create(ctx, s))

	got, err := store.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 7, got.UserID)
	assert.Equal(t, 1, backend.finds)
	assert.True(t, mr.Exists(config.CacheKey.SessionKey("tok")))

	got, err = store.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, 1, backend.finds, "second lookup should be served from cache")

	ttl := mr.TTL(config.CacheKey.SessionKey("tok"))
	assert.LessOrEqual(t, ttl, maxSessionCacheTTL)
}

func TestCachedSessionStoreMissIsNotCached(t *testing.T) {
	store, _, mr := newCachedStore(t)

	_, err := store.FindByToken(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(config.CacheKey.SessionKey("nope")))
}

func TestCachedSessionStoreUpdateExpiryRefreshesCache(t *testing.T) {
	ctx := context.Background()
	store, backend, _ := newCachedStore(t)

	s := &model.Session{UserID: 7, Token: "tok", ExpiredAt: time.Now().Add(time.Minute)}
	require.NoError(t, store.Create(ctx, s))

	later := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	require.NoError(t, store.UpdateExpiry(ctx, s, later))

	got, err := store.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, later.Equal(got.ExpiredAt))
	assert.Equal(t, 0, backend.finds)
}

func TestCachedSessionStoreDeleteEvicts(t *testing.T) {
	ctx := context.Background()
	store, _, mr := newCachedStore(t)

	s := &model.Session{UserID: 7, Token: "tok", ExpiredAt: time.Now().Add(time.Hour)}
	require.NoError(t, store.Create(ctx, s))
	require.True(t, mr.Exists(config.CacheKey.SessionKey("tok")))

	require.NoError(t, store.Delete(ctx, s))
	assert.False(t, mr.Exists(config.CacheKey.SessionKey("tok")))

	_, err := store.FindByToken(ctx, "tok")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, s), ErrNotFound)
}

func TestCachedSessionStoreSkipsExpiredSessions(t *testing.T) {
	ctx := context.Background()
	store, _, mr := newCachedStore(t)

	s := &model.Session{UserID: 7, Token: "old", ExpiredAt: time.Now().Add(-time.Second)}
	require.NoError(t, store.Create(ctx, s))
	assert.False(t, mr.Exists(config.CacheKey.SessionKey("old")))
}

func TestCachedSessionStoreFallsBackWhenRedisDown(t *testing.T) {
	ctx := context.Background()
	store, backend, mr := newCachedStore(t)

	s := &model.Session{UserID: 7, Token: "tok", ExpiredAt: time.Now().Add(time.Hour)}
	require.NoError(t, backend.Create(ctx, s))
	mr.Close()

	got, err := store.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 7, got.UserID)
}
