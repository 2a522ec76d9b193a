package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisList stores items as JSON in Redis lists under prefix.
// A positive maxLen trims to the newest items; a positive ttl expires idle keys.
type RedisList[T any] struct {
	client *redis.Client
	prefix string
	maxLen int
	ttl    time.Duration
}

func NewRedisList[T any](client *redis.Client, prefix string, maxLen int, ttl time.Duration) *RedisList[T] {
	return &RedisList[T]{client: client, prefix: prefix, maxLen: maxLen, ttl: ttl}
}

func (l *RedisList[T]) Append(ctx context.Context, key string, item T) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode list item: %w", err)
	}
	full := l.prefix + key
	_, err = l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, full, data)
		if l.maxLen > 0 {
			pipe.LTrim(ctx, full, int64(-l.maxLen), -1)
		}
		if l.ttl > 0 {
			pipe.Expire(ctx, full, l.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append %s: %w", full, err)
	}
	return nil
}

func (l *RedisList[T]) Range(ctx context.Context, key string) ([]T, error) {
	raw, err := l.client.LRange(ctx, l.prefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("range %s: %w", l.prefix+key, err)
	}
	return decodeItems[T](raw)
}

func (l *RedisList[T]) Drain(ctx context.Context, key string) ([]T, error) {
	full := l.prefix + key
	var rangeCmd *redis.StringSliceCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		rangeCmd = pipe.LRange(ctx, full, 0, -1)
		pipe.Del(ctx, full)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("drain %s: %w", full, err)
	}
	return decodeItems[T](rangeCmd.Val())
}

func decodeItems[T any](raw []string) ([]T, error) {
	out := make([]T, 0, len(raw))
	for _, entry := range raw {
		var item T
		if err := json.Unmarshal([]byte(entry), &item); err != nil {
			return nil, fmt.Errorf("decode list item: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}

// RedisHash stores counters in Redis hashes under prefix.
type RedisHash struct {
	client *redis.Client
	prefix string
}

func NewRedisHash(client *redis.Client, prefix string) *RedisHash {
	return &RedisHash{client: client, prefix: prefix}
}

func (h *RedisHash) Incr(ctx context.Context, key, field string, delta int64) error {
	return h.client.HIncrBy(ctx, h.prefix+key, field, delta).Err()
}

func (h *RedisHash) SetNX(ctx context.Context, key, field string, value int64) (bool, error) {
	return h.client.HSetNX(ctx, h.prefix+key, field, value).Result()
}

func (h *RedisHash) GetAll(ctx context.Context, key string) (map[string]int64, error) {
	raw, err := h.client.HGetAll(ctx, h.prefix+key).Result()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", h.prefix+key, err)
	}
	out := make(map[string]int64, len(raw))
	for field, value := range raw {
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("field %s of %s is not an integer: %w", field, h.prefix+key, err)
		}
		out[field] = n
	}
	return out, nil
}

func (h *RedisHash) Delete(ctx context.Context, key string) error {
	return h.client.Del(ctx, h.prefix+key).Err()
}

// RedisGate claims keys with SET NX and a TTL.
type RedisGate struct {
	client *redis.Client
	prefix string
}

func NewRedisGate(client *redis.Client, prefix string) *RedisGate {
	return &RedisGate{client: client, prefix: prefix}
}

func (g *RedisGate) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.prefix+key, 1, ttl).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	return ok, err
}

func (g *RedisGate) Release(ctx context.Context, key string) error {
	return g.client.Del(ctx, g.prefix+key).Err()
}

var (
	_ List[struct{}] = (*RedisList[struct{}])(nil)
	_ Hash           = (*RedisHash)(nil)
	_ Gate           = (*RedisGate)(nil)
)
