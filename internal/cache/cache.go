package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshCache — write-through кэш текущего хэша refresh-токена по
// идентификатору пользователя. Источник истины — хранилище; кэш лишь
// снимает чтение с БД на горячем пути ротации. У пользователя ровно одна
// активная сессия, поэтому ключ — сам пользователь, а не токен.
type RefreshCache interface {
	// Get возвращает хэш и признак наличия записи в кэше.
	Get(ctx context.Context, userID string) (string, bool, error)
	// Set сохраняет хэш с TTL (время жизни refresh-токена).
	Set(ctx context.Context, userID, hash string, ttl time.Duration) error
	// Del удаляет запись (logout).
	Del(ctx context.Context, userID string) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "blog:rt:".
func NewRedisCache(redisURL, prefix string) (RefreshCache, error) {
	if prefix == "" {
		prefix = "blog:rt:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(userID string) string { return c.prefix + userID }

func (c *redisCache) Get(ctx context.Context, userID string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}

		return "", false, err
	}

	return v, true, nil
}

func (c *redisCache) Set(ctx context.Context, userID, hash string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(userID), hash, ttl).Err()
}

func (c *redisCache) Del(ctx context.Context, userID string) error {
	return c.rdb.Del(ctx, c.key(userID)).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
