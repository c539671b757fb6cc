package sessionstore

import (
	"context"
	"sync"
	"time"

	"lusolingo/internal/models"
)

const defaultRunTTL = 2 * time.Hour

type memoryEntry struct {
	run       *models.LessonSession
	expiresAt time.Time
}

// MemoryStore keeps lesson runs in a map. Expired entries are invisible to
// Get; PurgeExpired reclaims them and is meant to run on the server's
// cleanup ticker.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]memoryEntry
	ttl  time.Duration
}

// NewMemoryStore creates an in-memory run store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultRunTTL
	}
	return &MemoryStore{
		runs: make(map[string]memoryEntry),
		ttl:  ttl,
	}
}

// Save writes the run under the given key, resetting its TTL.
func (s *MemoryStore) Save(ctx context.Context, key string, run *models.LessonSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[key] = memoryEntry{run: run, expiresAt: time.Now().Add(s.ttl)}
	return nil
}

// Get retrieves a run by key. A miss or an expired entry returns nil, nil.
func (s *MemoryStore) Get(ctx context.Context, key string) (*models.LessonSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.runs[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	return entry.run, nil
}

// Delete removes a run by key.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.runs, key)
	return nil
}

// PurgeExpired drops entries past their TTL and reports how many went.
func (s *MemoryStore) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	purged := 0
	for key, entry := range s.runs {
		if now.After(entry.expiresAt) {
			delete(s.runs, key)
			purged++
		}
	}
	return purged
}

// Close releases the map.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs = nil
	return nil
}
