package persistence

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisSlot is a Slot backed by Redis. Each key maps to
//
//	<prefix>slot:<key>  => raw bytes
type RedisSlot struct {
	client *redis.Client
	prefix string
}

var _ Slot = (*RedisSlot)(nil)

// NewRedisSlot creates a RedisSlot.
// prefix is optional but recommended (e.g. "sessionflow:").
func NewRedisSlot(client *redis.Client, prefix string) *RedisSlot {
	if prefix == "" {
		prefix = "sessionflow:"
	}
	return &RedisSlot{
		client: client,
		prefix: prefix,
	}
}

func (s *RedisSlot) keySlot(key string) string {
	return s.prefix + "slot:" + key
}

func (s *RedisSlot) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.keySlot(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSlotEmpty
		}
		return nil, err
	}
	return data, nil
}

func (s *RedisSlot) Set(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, s.keySlot(key), data, 0).Err()
}
