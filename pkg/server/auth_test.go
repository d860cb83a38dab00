package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthHandler_Authorize(t *testing.T) {
	auth := NewAuthHandler("test-secret")
	assert.True(t, auth.Enabled())

	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"valid token", "Bearer test-secret", true},
		{"missing header", "", false},
		{"wrong token", "Bearer wrong-secret", false},
		{"wrong scheme", "Basic test-secret", false},
		{"token without scheme", "test-secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/reload", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, auth.Authorize(req))
		})
	}
}

func TestAuthHandler_Disabled(t *testing.T) {
	auth := NewAuthHandler("")
	assert.False(t, auth.Enabled())

	req := httptest.NewRequest(http.MethodPost, "/v1/reload", nil)
	assert.True(t, auth.Authorize(req))
}
