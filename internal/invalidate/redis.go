package invalidate

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"bakesub/internal/config"
)

// RedisInvalidator publishes invalidation topics on a redis pub/sub
// channel consumed by the page caches fronting the site.
type RedisInvalidator struct {
	rdb     *goredis.Client
	channel string
}

// NewRedis connects to redis and verifies the connection with a ping.
func NewRedis(cfg config.RedisConfig) (*RedisInvalidator, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	channel := strings.TrimSpace(cfg.Channel)
	if channel == "" {
		channel = "bakesub:invalidate"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisInvalidator{rdb: rdb, channel: channel}, nil
}

// Invalidate implements Invalidator by publishing the topic.
func (r *RedisInvalidator) Invalidate(ctx context.Context, topic string) error {
	if r == nil || r.rdb == nil {
		return fmt.Errorf("redis invalidator not initialized")
	}
	return r.rdb.Publish(ctx, r.channel, topic).Err()
}

// Close releases the underlying redis connection.
func (r *RedisInvalidator) Close() error {
	if r == nil || r.rdb == nil {
		return nil
	}
	return r.rdb.Close()
}
