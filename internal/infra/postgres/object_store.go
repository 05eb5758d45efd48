package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"quiz-review-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ObjectStore holds whole JSON documents in Postgres, one row per
// (bucket, key), replaced in full on every Put.
type ObjectStore struct {
	pool   *pgxpool.Pool
	bucket string
}

func NewObjectStore(pool *pgxpool.Pool, bucket string) *ObjectStore {
	return &ObjectStore{pool: pool, bucket: bucket}
}

func (s *ObjectStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT data FROM review_objects WHERE bucket=$1 AND key=$2`, s.bucket, key).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, domain.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load object %s: %w", key, err)
	}
	return data, nil
}

func (s *ObjectStore) Put(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO review_objects (bucket, key, data, metadata, updated_at)
		 VALUES ($1, $2, $3, $4::jsonb, now())
		 ON CONFLICT (bucket, key)
		 DO UPDATE SET data=EXCLUDED.data, metadata=EXCLUDED.metadata, updated_at=now()`,
		s.bucket, key, data, string(meta))
	if err != nil {
		return fmt.Errorf("store object %s: %w", key, err)
	}
	return nil
}
