package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-peer/internal/config"
)

var ErrAddrNotFound = errors.New("redis address string is empty")

// NewRedis - connects to the messaging service and checks it answers.
func NewRedis(ctx context.Context, conf config.Redis) (*redis.Client, error) {
	addr := conf.GetRedisAddr()
	if addr == "" {
		return nil, ErrAddrNotFound
	}

	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	if _, err := conn.Ping(ctx).Result(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return conn, nil
}
