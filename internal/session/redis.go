package session

import (
	"context"
	"time"

	"github.com/redis/rueidis"
)

const redisKeyPrefix = "session:"

// RedisStore keeps session ids in Redis so sessions survive restarts and are
// shared across instances. Expiry is delegated to Redis key TTLs.
type RedisStore struct {
	client rueidis.Client
}

func NewRedisStore(addr string) (*RedisStore, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Put(ctx context.Context, id, userID string, ttl time.Duration) error {
	cmd := s.client.B().Set().Key(redisKeyPrefix + id).Value(userID).Ex(ttl).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *RedisStore) Get(ctx context.Context, id string) (string, bool, error) {
	cmd := s.client.B().Get().Key(redisKeyPrefix + id).Build()
	userID, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return userID, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	cmd := s.client.B().Del().Key(redisKeyPrefix + id).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *RedisStore) Close() { s.client.Close() }
