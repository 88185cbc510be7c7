package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrConflict is returned when an optimistic Redis transaction keeps losing
// to concurrent writers.
var ErrConflict = errors.New("too many concurrent updates")

const defaultRedisRetries = 16

// RedisBackend stores each namespace as one Redis hash of url -> record.
// Updates use WATCH/MULTI so concurrent writers never lose updates.
type RedisBackend struct {
	client     redis.UniversalClient
	maxRetries int
}

// NewRedisBackend wraps an existing client.
func NewRedisBackend(client redis.UniversalClient) *RedisBackend {
	return &RedisBackend{client: client, maxRetries: defaultRedisRetries}
}

// DialRedis connects to addr and verifies the connection.
func DialRedis(ctx context.Context, addr string) (*RedisBackend, error) {
	if addr == "" {
		return nil, errors.New("redis address cannot be empty")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisBackend(client), nil
}

func (b *RedisBackend) Load(ctx context.Context, namespace string) (map[string][]byte, error) {
	values, err := b.client.HGetAll(ctx, namespace).Result()
	if err != nil {
		return nil, b.wrap(ctx, err)
	}
	return toBytes(values), nil
}

func (b *RedisBackend) Update(ctx context.Context, namespace string, fn func(map[string][]byte) error) error {
	txf := func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, namespace).Result()
		if err != nil {
			return err
		}
		before := toBytes(values)
		after := cloneRecords(before)
		if err := fn(after); err != nil {
			return err
		}

		removed, changed := Diff(before, after)
		if len(removed) == 0 && len(changed) == 0 {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if len(removed) > 0 {
				pipe.HDel(ctx, namespace, removed...)
			}
			if len(changed) > 0 {
				fields := make(map[string]interface{}, len(changed))
				for k, v := range changed {
					fields[k] = v
				}
				pipe.HSet(ctx, namespace, fields)
			}
			return nil
		})
		return err
	}

	for attempt := 0; attempt < b.maxRetries; attempt++ {
		err := b.client.Watch(ctx, txf, namespace)
		if err == nil {
			return nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return b.wrap(ctx, err)
	}
	return fmt.Errorf("failed to update %s: %w", namespace, ErrConflict)
}

func (b *RedisBackend) Close() error {
	return b.client.Close()
}

func (b *RedisBackend) wrap(ctx context.Context, err error) error {
	if errors.Is(err, redis.ErrClosed) || ctx.Err() != nil {
		return TornDown(err)
	}
	return fmt.Errorf("redis: %w", err)
}

func toBytes(values map[string]string) map[string][]byte {
	out := make(map[string][]byte, len(values))
	for k, v := range values {
		out[k] = []byte(v)
	}
	return out
}
