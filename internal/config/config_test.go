package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_DSN", "DB_HOST", "DB_PORT", "REDIS_ADDR", "CLIENT_CACHE_TTL", "MIGRATIONS", "LOG_MODE"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080 got %s", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Fatalf("expected default db port got %d", cfg.Database.Port)
	}
	if cfg.Redis.Enabled() {
		t.Fatalf("redis cache should be disabled without REDIS_ADDR")
	}
	if cfg.Redis.TTL != 5*time.Minute {
		t.Fatalf("expected 5m ttl got %s", cfg.Redis.TTL)
	}
	if cfg.App.Migrations {
		t.Fatalf("migrations should default to false")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DB_PORT", "not-a-number")
	t.Setenv("MIGRATIONS", "YES")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("CLIENT_CACHE_TTL", "30")
	cfg := Load()
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected 9090 got %s", cfg.Server.Port)
	}
	if cfg.Database.Port != 5432 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.Database.Port)
	}
	if !cfg.App.Migrations {
		t.Fatalf("expected migrations enabled")
	}
	if !cfg.Redis.Enabled() || cfg.Redis.TTL != 30*time.Second {
		t.Fatalf("unexpected redis config %+v", cfg.Redis)
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "traiteur", SSLMode: "disable"}
	if got := d.DSN(); got != "host=db port=5432 user=u password=p dbname=traiteur sslmode=disable" {
		t.Fatalf("unexpected dsn %q", got)
	}
	d.RawDSN = "postgres://x:y@h:1/z"
	if d.DSN() != d.RawDSN {
		t.Fatalf("raw dsn should win")
	}
}
