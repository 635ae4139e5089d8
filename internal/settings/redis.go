package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKey = "halo:settings"

// redisClient is the subset of *redis.Client the store uses.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Close() error
}

// RedisStore keeps settings as one JSON value.
type RedisStore struct {
	client redisClient
}

// NewRedisStore connects and pings the server.
func NewRedisStore(addr, password string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return newRedisStore(client), nil
}

func newRedisStore(client redisClient) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Get(ctx context.Context) (Settings, error) {
	data, err := r.client.Get(ctx, redisKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return Defaults(), nil
	}
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return s.withDefaults(), nil
}

func (r *RedisStore) Save(ctx context.Context, s Settings) error {
	data, err := json.Marshal(s.withDefaults())
	if err != nil {
		return err
	}
	return r.client.Set(ctx, redisKey, data, 0).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
