package slot

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	myErr "vcc-feedback/internal/types/errors"
)

type RedisStorage struct {
	RedisClient *redis.Client
	Logger      *zap.SugaredLogger
}

func NewRedisStorage(redisClient *redis.Client, logger *zap.SugaredLogger) *RedisStorage {
	return &RedisStorage{
		RedisClient: redisClient,
		Logger:      logger,
	}
}

func (s *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.RedisClient.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}

		s.Logger.Error(
			"Failed get slot from Redis",
			zap.Error(err),
			zap.String("key", key),
		)

		return "", false, myErr.ErrDBInternal
	}

	return value, true, nil
}

// Set - слоты живут без TTL, как и localStorage
func (s *RedisStorage) Set(ctx context.Context, key string, value string) error {
	if err := s.RedisClient.Set(ctx, key, value, 0).Err(); err != nil {
		s.Logger.Error(
			"Failed save slot to Redis",
			zap.Error(err),
			zap.String("key", key),
		)

		return myErr.ErrDBInternal
	}

	return nil
}

func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.RedisClient.Ping(ctx).Err()
}
