package cache

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNoop(t *testing.T) {
	var c DirectoryCache = Noop{}
	ctx := context.Background()
	if err := c.Set(ctx, []byte(`[]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatalf("noop cache should always miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
}

// Needs a running redis; set REDIS_ADDR to enable.
func TestRedisRoundTrip(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	c, closeFn, err := NewRedis(ctx, RedisOptions{Addr: addr, DB: 15, TTL: time.Second})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer closeFn()

	body := []byte(`[{"id":"0611223344"}]`)
	if err := c.Set(ctx, body); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := c.Get(ctx)
	if err != nil || !ok || string(got) != string(body) {
		t.Fatalf("get: ok=%v err=%v body=%s", ok, err, got)
	}
	if err := c.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, ok, err := c.Get(ctx); ok || err != nil {
		t.Fatalf("expected miss after invalidate, ok=%v err=%v", ok, err)
	}

	if err := c.Set(ctx, body); err != nil {
		t.Fatalf("set: %v", err)
	}
	time.Sleep(1500 * time.Millisecond)
	if _, ok, _ := c.Get(ctx); ok {
		t.Fatal("expected entry to expire")
	}
}
