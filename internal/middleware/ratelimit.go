package middleware

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	myErr "vcc-feedback/internal/types/errors"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter - отдельный token bucket на каждый IP.
// IP берется из RemoteAddr, за прокси его подставляет handlers.ProxyHeaders.
type RateLimiter struct {
	Logger *zap.SugaredLogger

	rps      rate.Limit
	burst    int
	mu       sync.Mutex
	visitors map[string]*visitor
	now      func() time.Time
}

func NewRateLimiter(rps float64, burst int, logger *zap.SugaredLogger) *RateLimiter {
	return &RateLimiter{
		Logger:   logger,
		rps:      rate.Limit(rps),
		burst:    burst,
		visitors: make(map[string]*visitor),
		now:      time.Now,
	}
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		if !rl.limiter(ip).AllowN(rl.now(), 1) {
			rl.Logger.Warnf("rate limit exceeded for %s %s from %s", r.Method, r.URL.Path, ip)
			myErr.SendErrorTo(w, myErr.ErrTooManyRequests, http.StatusTooManyRequests, rl.Logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.visitors[ip] = v
	}
	v.lastSeen = rl.now()

	return v.limiter
}

// Cleanup - раз в interval выкидывает IP, которые молчали дольше idle. Выходит по ctx.
func (rl *RateLimiter) Cleanup(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict(idle)
		}
	}
}

func (rl *RateLimiter) evict(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	for ip, v := range rl.visitors {
		if now.Sub(v.lastSeen) > idle {
			delete(rl.visitors, ip)
		}
	}
}

func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
