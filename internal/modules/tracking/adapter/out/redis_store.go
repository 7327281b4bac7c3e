package out

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	trackingout "scormtrack/internal/modules/tracking/port/out"
)

// RedisStore is an origin tier shared across processes, used when several
// hosts serve the same learner.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

var _ trackingout.KeyValueStore = (*RedisStore)(nil)

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "failed to get %s", key)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "failed to set %s", key)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete %s", key)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
