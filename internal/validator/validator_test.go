package validator

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrongPassword(t *testing.T) {
	tests := []struct {
		pw   string
		want bool
	}{
		{"Passw0rd", true},
		{"passw0rd", false},
		{"PASSW0RD", false},
		{"Password", false},
		{"Pa0", false},
		{"Pa0" + strings.Repeat("x", 69), true},
		{"Pa0" + strings.Repeat("x", 70), false},
		// 8 characters but 73 bytes once encoded.
		{"Pa0" + strings.Repeat("ż", 35), false},
		{"Pa0" + strings.Repeat("ż", 34) + "x", true},
	}
	for _, tt := range tests {
		assert.Equalf(t, tt.want, StrongPassword(tt.pw), "%q", tt.pw)
	}
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("jan.kowalski@school.example"))
	assert.False(t, IsEmail("jan.kowalski"))
	assert.False(t, IsEmail(""))
}

func TestBindTranslatesFieldErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	Setup()

	type payload struct {
		Name string `json:"name" binding:"required"`
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{}`))
	c.Request.Header.Set("Content-Type", "application/json")

	var dst payload
	fields := Bind(c, &dst)
	require.NotNil(t, fields)
	assert.Contains(t, fields, "name")

	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString(`{`))
	fields = Bind(c, &dst)
	assert.Contains(t, fields, "detail")
}
