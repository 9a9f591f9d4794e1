package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/config"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// SessionBackend is the durable store behind CachedSessionStore.
type SessionBackend interface {
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	Create(ctx context.Context, s *model.Session) error
	UpdateExpiry(ctx context.Context, s *model.Session, expiredAt time.Time) error
	Delete(ctx context.Context, s *model.Session) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// maxSessionCacheTTL bounds how long a cached copy may shadow the database.
const maxSessionCacheTTL = 5 * time.Minute

// CachedSessionStore is a read-through Redis cache in front of a SessionBackend.
// Writes go to the backend first; the cache entry is then refreshed or dropped.
// Redis failures degrade to backend-only operation.
type CachedSessionStore struct {
	backend SessionBackend
	rdb     *redis.Client
	log     zerolog.Logger
	now     func() time.Time
}

// NewCachedSessionStore creates a new CachedSessionStore.
func NewCachedSessionStore(backend SessionBackend, rdb *redis.Client, log zerolog.Logger) *CachedSessionStore {
	return &CachedSessionStore{
		backend: backend,
		rdb:     rdb,
		log:     log.With().Str("component", "session_cache").Logger(),
		now:     time.Now,
	}
}

type cachedSession struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

// FindByToken returns the cached session or loads it from the backend.
func (c *CachedSessionStore) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	key := config.CacheKey.SessionKey(token)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cs cachedSession
		if err := json.Unmarshal(raw, &cs); err == nil {
			return &model.Session{
				ID:        cs.ID,
				UserID:    cs.UserID,
				Token:     token,
				CreatedAt: cs.CreatedAt,
				UpdatedAt: cs.UpdatedAt,
				ExpiredAt: cs.ExpiredAt,
			}, nil
		}
		c.log.Warn().Msg("Discarding undecodable cached session")
	case !errors.Is(err, redis.Nil):
		c.log.Warn().Err(err).Msg("Session cache read failed")
	}

	s, err := c.backend.FindByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	c.store(ctx, s)
	return s, nil
}

// Create persists s and primes the cache.
func (c *CachedSessionStore) Create(ctx context.Context, s *model.Session) error {
	if err := c.backend.Create(ctx, s); err != nil {
		return err
	}
	c.store(ctx, s)
	return nil
}

// UpdateExpiry persists the new expiry and refreshes the cached copy.
func (c *CachedSessionStore) UpdateExpiry(ctx context.Context, s *model.Session, expiredAt time.Time) error {
	if err := c.backend.UpdateExpiry(ctx, s, expiredAt); err != nil {
		c.evict(ctx, s.Token)
		return err
	}
	c.store(ctx, s)
	return nil
}

// Delete evicts the cached copy and removes s from the backend.
func (c *CachedSessionStore) Delete(ctx context.Context, s *model.Session) error {
	c.evict(ctx, s.Token)
	return c.backend.Delete(ctx, s)
}

// DeleteExpired is served by the backend. Cached copies expire on their own
// no later than the session itself.
func (c *CachedSessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return c.backend.DeleteExpired(ctx, now)
}

func (c *CachedSessionStore) store(ctx context.Context, s *model.Session) {
	ttl := s.ExpiredAt.Sub(c.now())
	if ttl <= 0 {
		return
	}
	if ttl > maxSessionCacheTTL {
		ttl = maxSessionCacheTTL
	}

	raw, err := json.Marshal(cachedSession{
		ID:        s.ID,
		UserID:    s.UserID,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ExpiredAt: s.ExpiredAt,
	})
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, config.CacheKey.SessionKey(s.Token), raw, ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Session cache write failed")
	}
}

func (c *CachedSessionStore) evict(ctx context.Context, token string) {
	if err := c.rdb.Del(ctx, config.CacheKey.SessionKey(token)).Err(); err != nil {
		c.log.Warn().Err(err).Msg("Session cache eviction failed")
	}
}
