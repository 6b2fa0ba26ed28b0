package utils

import (
	"context"
	"testing"
	"time"
)

func TestPostgresPoolDefaults(t *testing.T) {
	p := PostgresPool{MaxOpen: 8}.orDefault()
	if p.MaxOpen != 8 {
		t.Fatalf("expected explicit value kept, got %d", p.MaxOpen)
	}
	if p.MaxIdle != 2 || p.MaxLifetime != 30*time.Minute {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestOpenPostgresRequiresDSN(t *testing.T) {
	if _, err := OpenPostgres(context.Background(), "", PostgresPool{}, time.Second); err == nil {
		t.Fatalf("expected error for empty dsn")
	}
}

func TestSessionCacheOptions(t *testing.T) {
	o := SessionCacheOptions("localhost:6379")
	if o.Addr != "localhost:6379" || o.PoolSize != 2 {
		t.Fatalf("unexpected options: %+v", o)
	}
}

func TestOpenRedisRequiresAddr(t *testing.T) {
	if _, err := OpenRedis(context.Background(), SessionCacheOptions(""), time.Second); err == nil {
		t.Fatalf("expected error for empty addr")
	}
}
