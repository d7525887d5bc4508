package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(t *testing.T, perMinute int) (*Limiter, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
	rl := NewLimiter(Config{RequestsPerMinute: perMinute}).WithClock(clock.now)
	t.Cleanup(rl.Stop)
	return rl, clock
}

func TestAllowWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 3)

	for i := 0; i < 3; i++ {
		require.True(t, rl.Allow("10.0.0.1"), "request %d", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "other clients have their own window")

	clock.advance(time.Minute)
	assert.True(t, rl.Allow("10.0.0.1"), "window resets after a minute")
	assert.Equal(t, int64(1), rl.GetMetrics().TotalHits)
	assert.Equal(t, int64(2), rl.GetMetrics().ClientCount)
}

func TestSteadyTrafficDoesNotExtendWindow(t *testing.T) {
	rl, clock := newTestLimiter(t, 2)

	require.True(t, rl.Allow("a"))
	clock.advance(40 * time.Second)
	require.True(t, rl.Allow("a"))
	clock.advance(30 * time.Second)
	assert.True(t, rl.Allow("a"), "70s after the first request a new window starts")
}

func TestCleanupStaleEntries(t *testing.T) {
	rl, clock := newTestLimiter(t, 10)
	rl.Allow("old")
	clock.advance(11 * time.Minute)
	rl.Allow("new")

	assert.Equal(t, 1, rl.cleanupStaleEntries())
	assert.Equal(t, 1, rl.ActiveClients())
}

func TestStopIsIdempotent(t *testing.T) {
	rl := NewLimiter(DefaultConfig())
	rl.Stop()
	rl.Stop()
}

func TestMiddlewareLimitsListedMethods(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	ip := func(*http.Request) string { return "1.2.3.4" }
	h := rl.Middleware(ip, nil, http.MethodPost)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	do := func(method string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(method, "/api/upload", nil))
		return rr
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost).Code)
	rr := do(http.MethodPost)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusNoContent, do(http.MethodGet).Code, "GET is never limited")
	}
}
