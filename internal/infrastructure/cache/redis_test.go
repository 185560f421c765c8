package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_SelectsDBAndTimeouts(t *testing.T) {
	s := miniredis.RunT(t)

	c, err := OpenRedis(s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	opts := c.Options()
	if opts.DB != 2 {
		t.Fatalf("DB = %d, want 2", opts.DB)
	}
	if opts.ReadTimeout != 2*time.Second || opts.WriteTimeout != 2*time.Second {
		t.Fatalf("timeouts = %v/%v", opts.ReadTimeout, opts.WriteTimeout)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := c.Set(ctx, "rate:personal", "12", 0).Err(); err != nil {
		t.Fatalf("SET: %v", err)
	}
	// written into db 2, not the default db
	if got, _ := s.DB(2).Get("rate:personal"); got != "12" {
		t.Fatalf("db 2 value = %q", got)
	}
}

func TestOpenRedis_ServerGone(t *testing.T) {
	s := miniredis.RunT(t)
	addr := s.Addr()
	s.Close()

	if _, err := OpenRedis(addr, 0); err == nil {
		t.Fatal("expected ping error for a stopped server")
	}
}
