package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func newTestLimiter(t *testing.T, burst int) (*RateLimiter, *time.Time) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(0.1, burst, zaptest.NewLogger(t).Sugar())
	rl.now = func() time.Time { return now }
	return rl, &now
}

func requestFrom(addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/feedback", nil)
	req.RemoteAddr = addr
	return req
}

func TestRateLimiter_BurstThenReject(t *testing.T) {
	rl, _ := newTestLimiter(t, 2)

	var calls int
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusSeeOther)
	}))

	for i := 0; i < 2; i++ {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, requestFrom("10.0.0.1:5000"))
		assert.Equal(t, http.StatusSeeOther, rr.Code)
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, requestFrom("10.0.0.1:5001"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.JSONEq(t, `{"message":"too many requests"}`, rr.Body.String())
	assert.Equal(t, 2, calls)

	// другой IP со своим бакетом
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, requestFrom("10.0.0.2:5000"))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, 3, calls)
}

func TestRateLimiter_Refill(t *testing.T) {
	rl, now := newTestLimiter(t, 1)
	h := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, requestFrom("10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, requestFrom("10.0.0.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// 0.1 токена в секунду, через 20 секунд бакет снова полон
	*now = now.Add(20 * time.Second)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, requestFrom("10.0.0.1:1"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimiter_Evict(t *testing.T) {
	rl, now := newTestLimiter(t, 1)

	rl.limiter("10.0.0.1")
	*now = now.Add(2 * time.Minute)
	rl.limiter("10.0.0.2")

	rl.evict(time.Minute)

	assert.Len(t, rl.visitors, 1)
	_, ok := rl.visitors["10.0.0.2"]
	assert.True(t, ok)
}

func TestRateLimiter_CleanupStopsOnCancel(t *testing.T) {
	rl, _ := newTestLimiter(t, 1)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		rl.Cleanup(ctx, time.Millisecond, time.Minute)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cleanup did not return after cancel")
	}
}

func TestClientIP(t *testing.T) {
	assert.Equal(t, "192.168.1.5", clientIP(requestFrom("192.168.1.5:443")))
	assert.Equal(t, "::1", clientIP(requestFrom("[::1]:8080")))
	assert.Equal(t, "no-port", clientIP(requestFrom("no-port")))
}
