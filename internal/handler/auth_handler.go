package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/middleware"
	"github.com/stemsi/schoolhub-backend/internal/model"
	"github.com/stemsi/schoolhub-backend/internal/response"
	"github.com/stemsi/schoolhub-backend/internal/service"
	"github.com/stemsi/schoolhub-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService    *service.AuthService
	sessionService *service.SessionService
	cookies        middleware.CookieSettings
	log            zerolog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(
	authService *service.AuthService,
	sessionService *service.SessionService,
	cookies middleware.CookieSettings,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{
		authService:    authService,
		sessionService: sessionService,
		cookies:        cookies,
		log:            log.With().Str("component", "auth_handler").Logger(),
	}
}

// Login godoc
// POST /api/v1/auth/login
// Authenticates with email or login and sets the session cookies.
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	user, sess, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginRequired):
			response.Fail(c, http.StatusBadRequest, response.ErrLoginRequired)
		case errors.Is(err, service.ErrPasswordRequired):
			response.Fail(c, http.StatusBadRequest, response.ErrPasswordRequired)
		case errors.Is(err, service.ErrInvalidCredentials):
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		default:
			h.log.Error().Err(err).Msg("Login failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	middleware.SetSessionCookies(c, h.cookies, sess, user, h.sessionService.TTL())
	response.Success(c, http.StatusOK, gin.H{
		"user":       user,
		"expired_at": sess.ExpiredAt,
	})
}

// Logout godoc
// POST /api/v1/auth/logout
// Ends the current session. Fails like the session gate for missing,
// unknown and expired tokens.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie(middleware.SessionCookie)

	err := h.sessionService.Revoke(c.Request.Context(), token)
	if token != "" {
		middleware.ClearSessionCookies(c, h.cookies)
	}
	if err != nil {
		status, code := middleware.SessionFailure(err)
		if status == http.StatusInternalServerError {
			h.log.Error().Err(err).Msg("Logout failed")
		}
		response.Fail(c, status, code)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "logged out"})
}

// Register godoc
// POST /api/v1/auth/register
// Creates a student account pending email confirmation.
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrMissingData, fields)
		return
	}

	user, _, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLoginExists):
			response.Fail(c, http.StatusBadRequest, response.ErrLoginExists)
		case errors.Is(err, service.ErrEmailInvalid):
			response.Fail(c, http.StatusBadRequest, response.ErrEmailInvalid)
		case errors.Is(err, service.ErrEmailExists):
			response.Fail(c, http.StatusBadRequest, response.ErrEmailExists)
		case errors.Is(err, service.ErrPhoneExists):
			response.Fail(c, http.StatusBadRequest, response.ErrPhoneExists)
		case errors.Is(err, service.ErrWeakPassword):
			response.Fail(c, http.StatusBadRequest, response.ErrWeakPassword)
		case errors.Is(err, service.ErrInvalidBirthDate):
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidDate)
		case errors.Is(err, service.ErrAccountExists):
			response.Fail(c, http.StatusConflict, response.ErrConflict)
		default:
			h.log.Error().Err(err).Msg("Registration failed")
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"user": user})
}

// ConfirmEmail godoc
// POST /api/v1/auth/confirm-email
func (h *AuthHandler) ConfirmEmail(c *gin.Context) {
	var req model.ConfirmEmailRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.authService.ConfirmEmail(c.Request.Context(), req.Token); err != nil {
		if errors.Is(err, service.ErrEmailTokenInvalid) {
			response.Fail(c, http.StatusBadRequest, response.ErrEmailTokenInvalid)
			return
		}
		h.log.Error().Err(err).Msg("Email confirmation failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "email confirmed"})
}

// Me godoc
// GET /api/v1/auth/me
// Returns the profile of the currently authenticated user.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthorized)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}
