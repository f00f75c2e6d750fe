package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("success"))
})

func TestAuthMiddleware_NoAPIKey(t *testing.T) {
	handler := AuthMiddleware("")(okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_ValidKey(t *testing.T) {
	testKey := "test-secret-key-12345"
	handler := AuthMiddleware(testKey)(okHandler)

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{"X-API-Key header", "X-API-Key", testKey},
		{"Authorization Bearer", "Authorization", "Bearer " + testKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set(tt.headerName, tt.headerVal)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestAuthMiddleware_InvalidKey(t *testing.T) {
	testKey := "test-secret-key-12345"
	handler := AuthMiddleware(testKey)(okHandler)

	tests := []struct {
		name       string
		headerName string
		headerVal  string
	}{
		{"wrong key", "X-API-Key", "wrong-key"},
		{"similar key", "X-API-Key", "test-secret-key-12344"},
		{"prefix match", "X-API-Key", "test-secret-key"},
		{"longer key", "X-API-Key", "test-secret-key-123456"},
		{"empty key", "X-API-Key", ""},
		{"basic auth", "Authorization", "Basic " + testKey},
		{"no key header", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			if tt.headerName != "" {
				req.Header.Set(tt.headerName, tt.headerVal)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"unauthorized","status_code":401}`, w.Body.String())
		})
	}
}

func TestRateLimitDefaults(t *testing.T) {
	handler := RateLimit(RateLimitConfig{})(okHandler)

	for range 100 {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded","status_code":429}`, w.Body.String())
}

func TestRateLimitPerClient(t *testing.T) {
	handler := RateLimit(RateLimitConfig{RequestLimit: 1, WindowDuration: time.Hour})(okHandler)

	for _, ip := range []string{"192.0.2.1:1000", "192.0.2.2:1000"} {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.RemoteAddr = ip
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, ip)
	}
}
