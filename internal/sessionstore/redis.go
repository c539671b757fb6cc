package sessionstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"lusolingo/internal/models"
)

const runKeyPrefix = "lessonrun:"

// RedisStore persists lesson runs as JSON values with a TTL. Redis handles
// expiry itself, so there is no purge step.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed run store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultRunTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(key string) string {
	return runKeyPrefix + key
}

// Save writes the run under the given key, resetting its TTL.
func (s *RedisStore) Save(ctx context.Context, key string, run *models.LessonSession) error {
	val, err := json.Marshal(run)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(key), val, s.ttl).Err()
}

// Get retrieves a run by key. A miss returns nil, nil. Reads refresh the TTL
// so an active learner never loses a run mid-lesson.
func (s *RedisStore) Get(ctx context.Context, key string) (*models.LessonSession, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var run models.LessonSession
	if err := json.Unmarshal([]byte(val), &run); err != nil {
		return nil, err
	}

	// Best effort; a failed refresh only shortens the run's life.
	_ = s.client.Expire(ctx, s.key(key), s.ttl).Err()

	return &run, nil
}

// Delete removes a run by key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
