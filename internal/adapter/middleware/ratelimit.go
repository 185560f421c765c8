package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const minLimiterIdle = 10 * time.Minute

// RateLimitPerIP is a token bucket per client IP. It guards the public
// credential endpoints.
func RateLimitPerIP(rps rate.Limit, burst int) echo.MiddlewareFunc {
	l := newIPLimiters(rps, burst, time.Now)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP()) {
				return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
			}
			return next(c)
		}
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// ipLimiters drops buckets that have been idle long enough to refill
// completely, so forgetting them changes nothing for the client.
type ipLimiters struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idle    time.Duration
	now     func() time.Time
	buckets map[string]*ipBucket
	swept   time.Time
}

func newIPLimiters(rps rate.Limit, burst int, now func() time.Time) *ipLimiters {
	idle := minLimiterIdle
	if rps > 0 && rps != rate.Inf {
		if full := time.Duration(float64(burst) / float64(rps) * float64(time.Second)); full > idle {
			idle = full
		}
	}
	return &ipLimiters{
		rps:     rps,
		burst:   burst,
		idle:    idle,
		now:     now,
		buckets: make(map[string]*ipBucket),
		swept:   now(),
	}
}

func (l *ipLimiters) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if now.Sub(l.swept) >= l.idle {
		for k, b := range l.buckets {
			if now.Sub(b.seen) >= l.idle {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}
	b, ok := l.buckets[ip]
	if !ok {
		b = &ipBucket{lim: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = b
	}
	b.seen = now
	return b.lim.AllowN(now, 1)
}

func (l *ipLimiters) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
