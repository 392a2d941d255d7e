package redis

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"
)

// Client represents a Redis client.
type Client struct {
	rdb *redis.Client
}

// RDB returns the underlying go-redis client.
func (c *Client) RDB() *redis.Client {
	return c.rdb
}

// Close closes the connection pool for graceful shutdown.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// MustNewClient connects to REDIS_ADDR. It returns nil when REDIS_ADDR is unset.
func MustNewClient() *Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis: %v", err))
	}

	slog.Info("Redis connected", "addr", addr)

	return &Client{rdb: rdb}
}
