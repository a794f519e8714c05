package redis

import (
	"testing"
	"time"

	"github.com/angelmondragon/streetlink-backend/pkg/config"
)

func TestBuildKeyNamespacing(t *testing.T) {
	c := &Client{}

	if got := c.IdempotencyKey("user|POST|/api/vendor/orders", "abc"); got != "sl:idempotency:user|POST|/api/vendor/orders:abc" {
		t.Fatalf("unexpected idempotency key %q", got)
	}
	if got := c.RateLimitKey("rl:ip:login:1.2.3.4"); got != "sl:rate_limit:rl:ip:login:1.2.3.4" {
		t.Fatalf("unexpected rate limit key %q", got)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address provided")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:         "redis://localhost:6379/2",
		PoolSize:    7,
		DialTimeout: 3 * time.Second,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.Addr != "localhost:6379" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
	if opts.PoolSize != 7 {
		t.Fatalf("pool size from config should apply, got %d", opts.PoolSize)
	}
}
