package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/repository"
)

// Session gate errors. Each maps to a distinct client response.
var (
	ErrUnauthorized        = errors.New("no session token")
	ErrInvalidSession      = errors.New("invalid session")
	ErrSessionExpired      = errors.New("session expired")
	ErrSessionOwnerMissing = errors.New("session owner not found")
)

const sessionTokenBytes = 32

// SessionStore persists sessions. Lookups and deletes of absent sessions
// report repository.ErrNotFound.
type SessionStore interface {
	FindByToken(ctx context.Context, token string) (*model.Session, error)
	Create(ctx context.Context, s *model.Session) error
	UpdateExpiry(ctx context.Context, s *model.Session, expiredAt time.Time) error
	Delete(ctx context.Context, s *model.Session) error
}

// UserStore loads users by ID.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*model.User, error)
}

// SessionService authenticates requests from opaque session tokens.
type SessionService struct {
	sessions SessionStore
	users    UserStore
	clock    Clock
	ttl      time.Duration
	log      zerolog.Logger
}

// NewSessionService creates a new SessionService. ttl is both the initial
// lifetime of a session and the window each successful use extends it by.
func NewSessionService(sessions SessionStore, users UserStore, clock Clock, ttl time.Duration, log zerolog.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		clock:    clock,
		ttl:      ttl,
		log:      log.With().Str("component", "session_service").Logger(),
	}
}

// TTL returns the configured session lifetime.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create opens a new session for userID.
func (s *SessionService) Create(ctx context.Context, userID int) (*model.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	sess := &model.Session{
		UserID:    userID,
		Token:     token,
		ExpiredAt: s.clock.Now().Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return sess, nil
}

// Verify resolves token to its user and slides the session's expiry forward.
// An expired session is deleted before ErrSessionExpired is returned, so a
// repeated call with the same token yields ErrInvalidSession.
func (s *SessionService) Verify(ctx context.Context, token string) (*model.User, error) {
	sess, err := s.live(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.UpdateExpiry(ctx, sess, s.clock.Now().Add(s.ttl)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		s.log.Error().Err(err).Int("session_id", sess.ID).Msg("Failed to renew session")
		return nil, fmt.Errorf("renew session: %w", err)
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.log.Error().Int("session_id", sess.ID).Int("user_id", sess.UserID).Msg("Session references a missing user")
			return nil, ErrSessionOwnerMissing
		}
		return nil, fmt.Errorf("load session owner: %w", err)
	}
	return user, nil
}

// Check reports whether token still names a live session without renewing
// it. An expired session is purged as in Verify.
func (s *SessionService) Check(ctx context.Context, token string) error {
	_, err := s.live(ctx, token)
	return err
}

// Revoke ends the session identified by token. It fails the same way Verify
// does for absent, unknown and expired tokens.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	sess, err := s.live(ctx, token)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sess); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// live returns the session for token if it exists and has not expired.
func (s *SessionService) live(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	sess, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		s.log.Error().Err(err).Msg("Session lookup failed")
		return nil, fmt.Errorf("find session: %w", err)
	}

	if !sess.LiveAt(s.clock.Now()) {
		return nil, s.purge(ctx, sess)
	}
	return sess, nil
}

// purge deletes an expired session. A session already removed by a
// concurrent request counts as purged.
func (s *SessionService) purge(ctx context.Context, sess *model.Session) error {
	err := s.sessions.Delete(ctx, sess)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Error().Err(err).Int("session_id", sess.ID).Msg("Failed to delete expired session")
		return errors.Join(ErrSessionExpired, err)
	}
	s.log.Info().Int("session_id", sess.ID).Int("user_id", sess.UserID).Msg("Expired session purged")
	return ErrSessionExpired
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
