// Package middleware provides the HTTP middleware shared by every route:
// bearer authentication, CORS, request logging, rate limiting and panic
// recovery.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nutrieve/nutrieve/pkg/cache"
	"github.com/nutrieve/nutrieve/pkg/logger"
	"github.com/nutrieve/nutrieve/pkg/response"
)

// incrWindow counts one request in a fixed window that expires after
// ARGV[1] milliseconds.
var incrWindow = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

// window is a fixed-window request count for one client.
type window struct {
	count   int
	resetAt time.Time
}

// RateLimiter allows max requests per client IP in each period. While
// Redis is connected the count lives there and is shared by every
// instance; otherwise each process keeps its own windows.
type RateLimiter struct {
	name   string
	max    int
	period time.Duration
	now    func() time.Time

	mu        sync.Mutex
	clients   map[string]*window
	lastSweep time.Time
}

func NewRateLimiter(name string, max int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		name:    name,
		max:     max,
		period:  period,
		now:     time.Now,
		clients: make(map[string]*window),
	}
}

// allow prefers the shared Redis window and falls back to the local one
// when Redis is absent or failing.
func (l *RateLimiter) allow(ctx context.Context, key string) bool {
	if rdb := cache.RDB; rdb != nil {
		n, err := incrWindow.Run(ctx, rdb, []string{"ratelimit:" + l.name + ":" + key}, l.period.Milliseconds()).Int64()
		if err == nil {
			return n <= int64(l.max)
		}
		logger.WithCtx(ctx).Warn("rate limit: redis failed, using local window", "limiter", l.name, "error", err)
	}
	return l.Allow(key)
}

// Allow records one request from key in the local window and reports
// whether it is within the limit.
func (l *RateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.clients[key]
	if !ok || now.After(w.resetAt) {
		w = &window{resetAt: now.Add(l.period)}
		l.clients[key] = w
	}
	w.count++
	return w.count <= l.max
}

// sweep drops expired windows at most once per period.
func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.period {
		return
	}
	for key, w := range l.clients {
		if now.After(w.resetAt) {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// Middleware answers 429 once a client exceeds its budget.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(r.Context(), ClientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.period.Seconds())))
			response.Error(w, http.StatusTooManyRequests, "Too Many Requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit limits each client IP to max requests per period. Limiters
// with different names count separately.
//
//	r.Use(middleware.RateLimit("global", 200, time.Minute))
func RateLimit(name string, max int, period time.Duration) func(http.Handler) http.Handler {
	return NewRateLimiter(name, max, period).Middleware
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-Ip, then the
// remote address without its port.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if real := r.Header.Get("X-Real-Ip"); real != "" {
		return real
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
