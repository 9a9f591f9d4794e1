package worker

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/config"
)

// ExpiredSessionPurger removes sessions that expired at or before now.
type ExpiredSessionPurger interface {
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// SessionSweeper periodically deletes expired sessions that were never
// presented again. Sessions used after expiry are purged by the session gate
// itself; this only reclaims abandoned rows.
type SessionSweeper struct {
	sessions ExpiredSessionPurger
	rdb      *redis.Client
	interval time.Duration
	now      func() time.Time
	log      zerolog.Logger
}

// NewSessionSweeper creates a new SessionSweeper. When rdb is set, only the
// instance holding the sweep lock runs a given tick.
func NewSessionSweeper(sessions ExpiredSessionPurger, rdb *redis.Client, interval time.Duration, log zerolog.Logger) *SessionSweeper {
	return &SessionSweeper{
		sessions: sessions,
		rdb:      rdb,
		interval: interval,
		now:      time.Now,
		log:      log.With().Str("component", "session_sweeper").Logger(),
	}
}

// Start runs one sweep immediately and then one per interval until ctx is
// cancelled. Call in a goroutine.
func (w *SessionSweeper) Start(ctx context.Context) {
	w.log.Info().Dur("interval", w.interval).Msg("Worker started")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep deletes expired sessions once. It returns the number removed.
func (w *SessionSweeper) Sweep(ctx context.Context) int64 {
	if !w.acquire(ctx) {
		return 0
	}

	n, err := w.sessions.DeleteExpired(ctx, w.now())
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error().Err(err).Msg("Sweep failed")
		}
		return 0
	}
	if n > 0 {
		w.log.Info().Int64("deleted", n).Msg("Expired sessions swept")
	}
	return n
}

// acquire takes the sweep lock for most of one interval. Redis errors
// let the sweep run; deleting expired rows twice is harmless.
func (w *SessionSweeper) acquire(ctx context.Context) bool {
	if w.rdb == nil {
		return true
	}
	ok, err := w.rdb.SetNX(ctx, config.CacheKey.SessionSweepLockKey(), "1", w.interval*9/10).Result()
	if err != nil {
		w.log.Warn().Err(err).Msg("Sweep lock unavailable, sweeping anyway")
		return true
	}
	return ok
}
