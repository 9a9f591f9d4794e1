package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/response"
)

// Authorize guards a route with a type-level ability check. It must run
// after RequireSession. Conditions are not evaluated here; handlers check
// them against the concrete record.
func Authorize(action ability.Action, subject ability.SubjectType, log zerolog.Logger) gin.HandlerFunc {
	log = log.With().Str("component", "authorize").Logger()

	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			response.AbortFail(c, http.StatusUnauthorized, response.ErrUnauthorized)
			return
		}

		decision := Abilities(c).Decide(action, subject, nil)
		log.Debug().
			Int("user_id", user.ID).
			Str("role", string(user.Role)).
			Str("action", string(action)).
			Str("subject", string(subject)).
			Stringer("decision", decision).
			Msg("Access decision")

		if decision != ability.Allowed {
			response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
			return
		}
		c.Next()
	}
}
