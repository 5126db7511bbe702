package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"TrendEdge/internal/model"
)

// Redis stores series as JSON with a server-side TTL, so several scanner
// processes can share downloads.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// RedisConfig configures the Redis cache connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (c *Redis) Get(ctx context.Context, key Key) ([]model.OHLCV, bool, error) {
	raw, err := c.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	var bars []model.OHLCV
	if err := json.Unmarshal(raw, &bars); err != nil {
		return nil, false, fmt.Errorf("decode cached bars %s: %w", key, err)
	}
	return bars, true, nil
}

func (c *Redis) Set(ctx context.Context, key Key, bars []model.OHLCV) error {
	raw, err := json.Marshal(bars)
	if err != nil {
		return fmt.Errorf("encode bars: %w", err)
	}
	if err := c.client.Set(ctx, key.String(), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}
