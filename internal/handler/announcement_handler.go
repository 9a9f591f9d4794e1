package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/middleware"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/response"
	"github.com/stemsi/schoolhub-backend/internal/service"
	"github.com/stemsi/schoolhub-backend/internal/validator"
	ws "github.com/stemsi/schoolhub-backend/internal/websocket"
)

// AnnouncementFeed streams announcements as they are published.
type AnnouncementFeed interface {
	Subscribe(ctx context.Context) (<-chan model.Announcement, error)
}

// SessionChecker reports whether a session token is still live.
type SessionChecker interface {
	Check(ctx context.Context, token string) error
}

const sessionCheckTimeout = 5 * time.Second

// AnnouncementHandler handles announcement endpoints and the live stream.
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
	feed                AnnouncementFeed
	sessions            SessionChecker
	upgrader            websocket.Upgrader
	pingPeriod          time.Duration
	log                 zerolog.Logger
}

// NewAnnouncementHandler creates a new AnnouncementHandler.
func NewAnnouncementHandler(announcementService *service.AnnouncementService, feed AnnouncementFeed, sessions SessionChecker, allowedOrigins []string, log zerolog.Logger) *AnnouncementHandler {
	return &AnnouncementHandler{
		announcementService: announcementService,
		feed:                feed,
		sessions:            sessions,
		upgrader:            ws.NewUpgrader(allowedOrigins),
		pingPeriod:          ws.PingPeriod,
		log:                 log.With().Str("component", "announcement_handler").Logger(),
	}
}

// List godoc
// GET /api/v1/announcements
func (h *AnnouncementHandler) List(c *gin.Context) {
	items, err := h.announcementService.List(c.Request.Context())
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"announcements": items})
}

// Create godoc
// POST /api/v1/announcements
func (h *AnnouncementHandler) Create(c *gin.Context) {
	var req model.CreateAnnouncementRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	a, err := h.announcementService.Create(c.Request.Context(), middleware.Abilities(c), &req)
	if err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"announcement": a})
}

// Delete godoc
// DELETE /api/v1/announcements/:id
func (h *AnnouncementHandler) Delete(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.announcementService.Delete(c.Request.Context(), middleware.Abilities(c), id); err != nil {
		failService(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "announcement deleted"})
}

// Stream godoc
// GET /api/v1/announcements/stream
// Upgrades to WebSocket and pushes every new announcement to the client.
// The session is re-checked on every ping; the socket closes once it ends.
func (h *AnnouncementHandler) Stream(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized)
		return
	}
	token, _ := c.Cookie(middleware.SessionCookie)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("user_id", user.ID).Logger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed, err := h.feed.Subscribe(ctx)
	if err != nil {
		wsLog.Error().Err(err).Msg("Announcement subscription failed")
		_ = ws.WriteError(conn, "stream unavailable")
		return
	}

	ws.KeepAlive(conn)
	if err := ws.WriteTyped(conn, ws.ReadyResponse{Event: ws.EventReady}); err != nil {
		return
	}
	wsLog.Info().Msg("Announcement stream connected")

	// The reader only forwards pings; every write happens on this goroutine.
	pings := make(chan struct{}, 1)
	go func() {
		defer cancel()
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				select {
				case pings <- struct{}{}:
				default:
				}
			}
		}
	}()

	ticker := time.NewTicker(h.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case a, ok := <-feed:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.AnnouncementResponse{Event: ws.EventAnnouncement, Announcement: a}); err != nil {
				return
			}
		case <-pings:
			if err := ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		case <-ticker.C:
			if h.sessionEnded(token, wsLog) {
				_ = ws.WriteError(conn, "session ended")
				_ = ws.WriteClose(conn, websocket.ClosePolicyViolation, "session ended")
				return
			}
			if err := ws.WritePing(conn); err != nil {
				return
			}
		}
	}
}

// sessionEnded reports whether the stream's session was revoked or expired.
// Store failures keep the stream open until the next check.
func (h *AnnouncementHandler) sessionEnded(token string, log zerolog.Logger) bool {
	ctx, cancel := context.WithTimeout(context.Background(), sessionCheckTimeout)
	defer cancel()

	err := h.sessions.Check(ctx, token)
	switch {
	case err == nil:
		return false
	case errors.Is(err, service.ErrUnauthorized),
		errors.Is(err, service.ErrInvalidSession),
		errors.Is(err, service.ErrSessionExpired):
		log.Info().Err(err).Msg("Session ended, closing announcement stream")
		return true
	default:
		log.Warn().Err(err).Msg("Session check failed")
		return false
	}
}
