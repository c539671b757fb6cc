// Package sessionstore persists in-flight lesson runs. A learner's run
// lives here between answers; completing or abandoning the lesson deletes
// it. The memory driver serves a single instance, the Redis driver lets
// runs survive restarts and horizontal scaling.
package sessionstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"lusolingo/internal/models"
)

// Store is the persistence surface for lesson runs.
type Store interface {
	// Save writes the run under the given key, resetting its TTL.
	Save(ctx context.Context, key string, run *models.LessonSession) error

	// Get retrieves a run by key. A miss returns nil, nil.
	Get(ctx context.Context, key string) (*models.LessonSession, error)

	// Delete removes a run by key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the store's resources.
	Close() error
}

// New selects a driver: Redis when a URL is configured, in-memory otherwise.
func New(redisURL string, ttl time.Duration) (Store, error) {
	if redisURL == "" {
		return NewMemoryStore(ttl), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return NewRedisStore(redis.NewClient(opts), ttl), nil
}
