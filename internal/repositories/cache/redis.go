package cache

import (
	"fmt"

	"purse/internal/config"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a client for cfg. The client connects lazily.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}
