package middleware

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/response"
	"github.com/stemsi/schoolhub-backend/internal/service"
)

const (
	// SessionCookie carries the opaque session token.
	SessionCookie = "session_token"
	// RoleCookie and UserIDCookie are readable by the dashboard for display.
	RoleCookie   = "role"
	UserIDCookie = "user_id"

	// ContextKeyUser is the Gin context key for the authenticated user.
	ContextKeyUser = "user"
	// ContextKeyAbilities is the Gin context key for the user's ability set.
	ContextKeyAbilities = "abilities"
)

// SessionVerifier resolves a session token to its user.
type SessionVerifier interface {
	Verify(ctx context.Context, token string) (*model.User, error)
}

// CookieSettings controls the attributes of the session cookies.
type CookieSettings struct {
	Secure bool
}

// RequireSession authenticates the request from the session cookie. On
// success the user and their abilities are stored in the context.
func RequireSession(verifier SessionVerifier, cookies CookieSettings, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "session_gate").Logger()

	return func(c *gin.Context) {
		token, _ := c.Cookie(SessionCookie)

		user, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			status, code := SessionFailure(err)
			log.Debug().Str("reason", string(code)).Str("path", c.FullPath()).Msg("Request rejected by session gate")
			if errors.Is(err, service.ErrSessionExpired) {
				ClearSessionCookies(c, cookies)
			}
			if status == http.StatusInternalServerError {
				log.Error().Err(err).Msg("Session verification failed")
			}
			response.AbortFail(c, status, code)
			return
		}

		c.Set(ContextKeyUser, user)
		c.Set(ContextKeyAbilities, ability.For(user.Actor()))
		c.Next()
	}
}

// SessionFailure maps a session gate error to its HTTP status and error code.
func SessionFailure(err error) (int, response.ErrCode) {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized, response.ErrUnauthorized
	case errors.Is(err, service.ErrInvalidSession):
		return http.StatusUnauthorized, response.ErrInvalidSession
	case errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized, response.ErrSessionExpired
	default:
		return http.StatusInternalServerError, response.ErrInternal
	}
}

// CurrentUser returns the authenticated user, or nil outside RequireSession.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil
	}
	u, _ := v.(*model.User)
	return u
}

// Abilities returns the authenticated user's ability set. Outside
// RequireSession it returns nil, which denies everything.
func Abilities(c *gin.Context) *ability.Ability {
	v, ok := c.Get(ContextKeyAbilities)
	if !ok {
		return nil
	}
	a, _ := v.(*ability.Ability)
	return a
}

// SetSessionCookies issues the session cookie and the dashboard hint cookies.
func SetSessionCookies(c *gin.Context, cookies CookieSettings, sess *model.Session, user *model.User, ttl time.Duration) {
	maxAge := int(ttl / time.Second)
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(SessionCookie, sess.Token, maxAge, "/", "", cookies.Secure, true)
	c.SetCookie(RoleCookie, string(user.Role), maxAge, "/", "", cookies.Secure, false)
	c.SetCookie(UserIDCookie, strconv.Itoa(user.ID), maxAge, "/", "", cookies.Secure, false)
}

// ClearSessionCookies expires every session cookie on the client.
func ClearSessionCookies(c *gin.Context, cookies CookieSettings) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", cookies.Secure, true)
	c.SetCookie(RoleCookie, "", -1, "/", "", cookies.Secure, false)
	c.SetCookie(UserIDCookie, "", -1, "/", "", cookies.Secure, false)
}
