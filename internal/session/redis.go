package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "tableside:session:"
	redisOpTimeout = 2 * time.Second
)

// RedisStore shares sessions between instances, so a diner's picker and a
// waiter's draft survive hitting a different replica. Store methods cannot
// report errors; a failed read looks like a missing session and a failed
// write is retried by the next request.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(ctx context.Context, connectionString string) (*RedisStore, error) {
	if ctx == nil {
		return nil, fmt.Errorf("context is required")
	}

	opts, err := redis.ParseURL(connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis connection string: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w (and failed to close client: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Get(ctx context.Context, key string) (*Data, bool) {
	if !r.usable(ctx, key) {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	val, err := r.client.Get(ctx, redisSessionKey(key)).Bytes()
	if err != nil {
		return nil, false
	}

	var data Data
	if err := json.Unmarshal(val, &data); err != nil {
		// Drop entries written by an incompatible release.
		r.client.Del(ctx, redisSessionKey(key))
		return nil, false
	}
	return &data, true
}

func (r *RedisStore) Set(ctx context.Context, key string, data *Data, ttl time.Duration) {
	if !r.usable(ctx, key) || data == nil {
		return
	}
	val, err := json.Marshal(data)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	r.client.Set(ctx, redisSessionKey(key), val, ttl)
}

func (r *RedisStore) Delete(ctx context.Context, key string) {
	if !r.usable(ctx, key) {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, redisOpTimeout)
	defer cancel()

	r.client.Del(ctx, redisSessionKey(key))
}

func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisStore) usable(ctx context.Context, key string) bool {
	return r != nil && r.client != nil && ctx != nil && key != ""
}

func redisSessionKey(id string) string {
	return redisKeyPrefix + id
}
