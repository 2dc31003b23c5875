// Package cache provides a Redis-backed key-value store for session
// snapshots shared across machines.
package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how long an abandoned session snapshot survives.
const DefaultTTL = 24 * time.Hour

// Config holds the Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration // 0 disables expiry
}

// DefaultConfig returns a Config for a local Redis.
func DefaultConfig() Config {
	return Config{Addr: "localhost:6379", TTL: DefaultTTL}
}

// ConfigFromEnv reads EXAMPREP_REDIS_ADDR, EXAMPREP_REDIS_PASSWORD,
// EXAMPREP_REDIS_DB and EXAMPREP_REDIS_TTL over the defaults.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()
	if v := os.Getenv("EXAMPREP_REDIS_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.Password = os.Getenv("EXAMPREP_REDIS_PASSWORD")
	if v := os.Getenv("EXAMPREP_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return cfg, fmt.Errorf("invalid EXAMPREP_REDIS_DB %q", v)
		}
		cfg.DB = n
	}
	if v := os.Getenv("EXAMPREP_REDIS_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("invalid EXAMPREP_REDIS_TTL %q", v)
		}
		cfg.TTL = d
	}
	return cfg, nil
}

// RedisKV stores snapshot keys in Redis. Every write refreshes the key's TTL.
type RedisKV struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisKV connects and pings the server.
func NewRedisKV(ctx context.Context, cfg Config) (*RedisKV, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Addr, err)
	}

	return NewRedisKVWithClient(client, cfg.TTL), nil
}

// NewRedisKVWithClient wraps an existing client.
func NewRedisKVWithClient(client *redis.Client, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, ttl: ttl}
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if err := r.client.Set(ctx, key, value, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *RedisKV) Close() error {
	return r.client.Close()
}
