// Package redis keeps client sessions in Redis so several terminals or hosts
// can share one login per profile.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/inkpress/blogkit/internal/session"
)

const (
	defaultTimeout = 5 * time.Second
	keyPrefix      = "blogkit"
	// A CLI process reads and writes a single key.
	poolSize = 2
)

type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds dialing, every command and the initial ping.
	Timeout time.Duration
}

// Connect returns a client once the server answers a ping.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
		PoolSize:     poolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// tokenKey is where profile's token lives: blogkit:<profile>:token.
func tokenKey(profile string) string {
	return keyPrefix + ":" + profile + ":" + session.TokenKey
}
