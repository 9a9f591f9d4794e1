package model

import "time"

// Session binds an opaque token to a user until ExpiredAt.
type Session struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Token     string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ExpiredAt time.Time `json:"expired_at"`
}

// LiveAt reports whether the session is still valid at now.
func (s *Session) LiveAt(now time.Time) bool {
	return now.Before(s.ExpiredAt)
}
