// Package redis provides the client behind the API rate limiter. Redis
// is optional infrastructure here: account state never lives in it.
package redis

import (
	"context"
	"fmt"

	"github.com/sharkz-dev/UltraEconomy/config"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// NewClient connects to Redis and fails fast when it is unreachable,
// so a misconfigured limiter surfaces at startup rather than on the
// first throttled request.
func NewClient(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("pinging redis: %w", err)
	}

	log.Info().
		Str("addr", cfg.Addr()).
		Int("db", cfg.DB).
		Msg("Redis connection established")

	return client, nil
}
