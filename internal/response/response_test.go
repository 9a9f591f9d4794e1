package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAbortFailEnvelope(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		AbortFail(c, http.StatusForbidden, ErrForbidden)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "4b0f1c4e-0f4a-4d8c-9a57-6f2d7b0b4c11")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, ErrForbidden, body.Error.Code)
	assert.Equal(t, "Forbidden", body.Error.Message)
	assert.Equal(t, "4b0f1c4e-0f4a-4d8c-9a57-6f2d7b0b4c11", body.Metadata.RequestID)
}

func TestRequestIDReplacesMalformedHeader(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) {
		Success(c, http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "bad\r\nvalue")
	r.ServeHTTP(w, req)

	id := w.Header().Get("X-Request-ID")
	assert.NotEqual(t, "bad\r\nvalue", id)
	assert.Len(t, id, 36)
}

func TestEveryCodeHasMessage(t *testing.T) {
	codes := []ErrCode{
		ErrUnauthorized, ErrInvalidSession, ErrSessionExpired, ErrInvalidCredentials,
		ErrLoginRequired, ErrPasswordRequired, ErrEmailTokenInvalid, ErrForbidden,
		ErrMissingData, ErrLoginExists, ErrEmailInvalid, ErrEmailExists, ErrPhoneExists,
		ErrWeakPassword, ErrValidation, ErrInvalidID, ErrInvalidDate, ErrInvalidPayload,
		ErrNotFound, ErrConflict, ErrRateLimitExceeded, ErrInternal, ErrUnavailable,
	}
	fallback := GetMessage("SOMETHING_ELSE")
	for _, code := range codes {
		assert.NotEqualf(t, fallback, GetMessage(code), "code %s", code)
	}
}
