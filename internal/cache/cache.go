// Package cache stores the encoded client directory between requests.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DirectoryKey is the redis key holding the encoded client list.
const DirectoryKey = "traiteur:clients:directory"

// DirectoryCache holds the JSON-encoded client list. Get reports a miss with
// ok=false and a nil error.
type DirectoryCache interface {
	Get(ctx context.Context) (body []byte, ok bool, err error)
	Set(ctx context.Context, body []byte) error
	Invalidate(ctx context.Context) error
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to redis and checks the connection with a ping.
func NewRedis(ctx context.Context, opts RedisOptions) (DirectoryCache, func() error, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &redisCache{client: client, ttl: ttl}, client.Close, nil
}

func (r *redisCache) Get(ctx context.Context) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	val, err := r.client.Get(ctx, DirectoryKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get value from Redis: %w", err)
	}
	return val, true, nil
}

func (r *redisCache) Set(ctx context.Context, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := r.client.Set(ctx, DirectoryKey, body, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set value in Redis: %w", err)
	}
	return nil
}

func (r *redisCache) Invalidate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := r.client.Del(ctx, DirectoryKey).Err(); err != nil {
		return fmt.Errorf("failed to delete key in Redis: %w", err)
	}
	return nil
}

// Noop never stores anything. Used when no redis address is configured.
type Noop struct{}

func (Noop) Get(context.Context) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, []byte) error         { return nil }
func (Noop) Invalidate(context.Context) error          { return nil }
