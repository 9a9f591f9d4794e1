package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stemsi/schoolhub-backend/internal/model"
)

// SessionRepository persists login sessions in PostgreSQL.
type SessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

// FindByToken retrieves the session holding token.
func (r *SessionRepository) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	s := &model.Session{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, token, created_at, updated_at, expired_at
		 FROM sessions WHERE token = $1`, token,
	).Scan(&s.ID, &s.UserID, &s.Token, &s.CreatedAt, &s.UpdatedAt, &s.ExpiredAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

// Create inserts a new session.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO sessions (user_id, token, expired_at)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		s.UserID, s.Token, s.ExpiredAt,
	).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return mapErr(err)
}

// UpdateExpiry moves the session's expiry. Concurrent renewals race on a
// single row update and the last writer wins.
func (r *SessionRepository) UpdateExpiry(ctx context.Context, s *model.Session, expiredAt time.Time) error {
	err := requireAffected(r.pool.Exec(ctx,
		`UPDATE sessions SET expired_at = $1, updated_at = NOW() WHERE id = $2`,
		expiredAt, s.ID))
	if err != nil {
		return err
	}
	s.ExpiredAt = expiredAt
	return nil
}

// Delete removes the session. ErrNotFound is returned if it is already gone.
func (r *SessionRepository) Delete(ctx context.Context, s *model.Session) error {
	return requireAffected(r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, s.ID))
}

// DeleteExpired removes every session whose expiry is at or before now.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE expired_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
