package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	newRequest := func(addr string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "http://test/v1/clusters", http.NoBody)
		req.RemoteAddr = addr

		return req
	}

	t.Run("allows up to the burst then rejects", func(t *testing.T) {
		handler := RateLimit(3)(next)

		for i := 0; i < 3; i++ {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, newRequest("10.0.0.1:1234"))
			assert.Equal(t, http.StatusNoContent, rec.Code, "request %d", i)
		}

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("10.0.0.1:1234"))
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		handler := RateLimit(1)(next)

		recA := httptest.NewRecorder()
		handler.ServeHTTP(recA, newRequest("10.0.0.1:1111"))
		assert.Equal(t, http.StatusNoContent, recA.Code)

		recA2 := httptest.NewRecorder()
		handler.ServeHTTP(recA2, newRequest("10.0.0.1:2222"))
		assert.Equal(t, http.StatusTooManyRequests, recA2.Code, "same IP, different port shares the bucket")

		recB := httptest.NewRecorder()
		handler.ServeHTTP(recB, newRequest("10.0.0.2:1111"))
		assert.Equal(t, http.StatusNoContent, recB.Code, "different IP gets its own bucket")
	})
}

func TestNormalizeRoute(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "/v1/clusters/4/books", want: "/v1/clusters/{id}/books"},
		{path: "/v1/clusters/17", want: "/v1/clusters/{id}"},
		{path: "/v1/clusters", want: "/v1/clusters"},
		{path: "/health", want: "/health"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeRoute(tt.path))
		})
	}
}

func TestStatusToClass(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{status: 101, want: "1xx"},
		{status: 200, want: "2xx"},
		{status: 301, want: "3xx"},
		{status: 404, want: "4xx"},
		{status: 503, want: "5xx"},
		{status: 42, want: "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusToClass(tt.status), "status %d", tt.status)
	}
}
