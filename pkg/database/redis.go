package database

import (
	"context"
	"fmt"
	"time"

	"interview_prep_backend/internal/config"
	"interview_prep_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
)

func InitRedis(ctx context.Context, cfg *config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     50,
		MinIdleConns: 5,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.L().Info("Redis connection established")
	return rdb, nil
}
