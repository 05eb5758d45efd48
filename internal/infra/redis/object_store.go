package redis

import (
	"context"
	"fmt"

	"quiz-review-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ObjectStore holds whole JSON documents in Redis.
// Documents are stored as: SET  obj:{bucket}:{key}      {data}
// Metadata is stored as:   HSET obj:{bucket}:{key}:meta {field} {value}
// The metadata write is best-effort; the document value is authoritative.
type ObjectStore struct {
	client *redis.Client
	bucket string
}

func NewObjectStore(client *redis.Client, bucket string) *ObjectStore {
	return &ObjectStore{client: client, bucket: bucket}
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.objectKey(key)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	if err := s.client.Set(ctx, s.objectKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	if len(metadata) > 0 {
		fields := make(map[string]interface{}, len(metadata))
		for k, v := range metadata {
			fields[k] = v
		}
		_ = s.client.HSet(ctx, s.metaKey(key), fields).Err()
	}
	return nil
}

func (s *ObjectStore) objectKey(key string) string {
	return "obj:" + s.bucket + ":" + key
}

func (s *ObjectStore) metaKey(key string) string {
	return s.objectKey(key) + ":meta"
}
