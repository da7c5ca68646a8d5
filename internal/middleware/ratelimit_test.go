package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/foodgram/backend/internal/middleware"
)

func loginRequest(ip string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/auth/token/login", nil)
	req.RemoteAddr = ip + ":51234"
	return req
}

func TestRateLimiter_ThrottlesPerIP(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := middleware.NewRateLimiter(2)
	rl.SetClock(func() time.Time { return now })
	h := rl.Handler(trivialHandler)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, loginRequest("10.0.0.1"))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRecorder()
	h.ServeHTTP(other, loginRequest("10.0.0.2"))
	assert.Equal(t, http.StatusOK, other.Code, "limits are per client")
}

func TestRateLimiter_RetryAfterAndRefill(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := middleware.NewRateLimiter(1)
	rl.SetClock(func() time.Time { return now })
	h := rl.Handler(trivialHandler)

	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.1"))
	throttled := httptest.NewRecorder()
	h.ServeHTTP(throttled, loginRequest("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, throttled.Code)
	assert.Equal(t, "60", throttled.Header().Get("Retry-After"))

	now = now.Add(time.Minute)
	refilled := httptest.NewRecorder()
	h.ServeHTTP(refilled, loginRequest("10.0.0.1"))
	assert.Equal(t, http.StatusOK, refilled.Code)
}

func TestRateLimiter_ForgetsIdleClients(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := middleware.NewRateLimiter(5)
	rl.SetClock(func() time.Time { return now })
	h := rl.Handler(trivialHandler)

	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.1"))
	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.2"))
	require.Equal(t, 2, rl.Visitors())

	now = now.Add(time.Hour)
	h.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.3"))
	assert.Equal(t, 1, rl.Visitors())
}
