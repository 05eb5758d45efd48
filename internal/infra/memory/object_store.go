package memory

import (
	"context"
	"sync"

	"quiz-review-service/internal/domain"
)

// ObjectStore keeps documents in a map. It backs the review log when no Redis
// or Postgres backend is configured, and serves as a test double.
type ObjectStore struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	metadata map[string]map[string]string
}

func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects:  make(map[string][]byte),
		metadata: make(map[string]map[string]string),
	}
}

func (s *ObjectStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, domain.ErrObjectNotFound
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *ObjectStore) Put(_ context.Context, key string, data []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.objects[key] = stored
	s.metadata[key] = metadata
	return nil
}

// Metadata returns the metadata written with the last Put for key.
func (s *ObjectStore) Metadata(key string) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.metadata[key]
}
