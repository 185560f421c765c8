package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

func TestRateLimitPerIP(t *testing.T) {
	e := echo.New()
	e.POST("/auth/login", func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		RateLimitPerIP(rate.Limit(0.001), 2))

	hit := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	for i := 0; i < 2; i++ {
		if code := hit("10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d within burst: want 200, got %d", i, code)
		}
	}
	if code := hit("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("burst exhausted: want 429, got %d", code)
	}
	// buckets are per client
	if code := hit("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client: want 200, got %d", code)
	}
}

func TestIPLimiters_EvictsIdleBuckets(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPLimiters(rate.Limit(1), 1, func() time.Time { return now })

	for i := 0; i < 100; i++ {
		l.allow(fmt.Sprintf("10.0.%d.%d", i/256, i%256))
	}
	if n := l.size(); n != 100 {
		t.Fatalf("buckets = %d, want 100", n)
	}
	if l.allow("10.0.0.0") {
		t.Fatal("bucket kept within idle window must still be drained")
	}

	now = now.Add(minLimiterIdle - time.Second)
	l.allow("10.9.9.9")
	now = now.Add(2 * time.Second)
	if !l.allow("10.8.8.8") {
		t.Fatal("fresh client must pass")
	}
	// everything but the two recent clients is gone
	if n := l.size(); n != 2 {
		t.Fatalf("buckets after sweep = %d, want 2", n)
	}
}

func TestIPLimiters_IdleCoversRefill(t *testing.T) {
	l := newIPLimiters(rate.Limit(0.001), 2, time.Now)
	if l.idle < 1999*time.Second {
		t.Fatalf("idle = %s, shorter than a full refill", l.idle)
	}
	if l := newIPLimiters(rate.Inf, 1, time.Now); l.idle != minLimiterIdle {
		t.Fatalf("idle = %s, want %s", l.idle, minLimiterIdle)
	}
}
