package redis

import (
	"context"
	"errors"
	"testing"

	"quiz-review-service/internal/domain"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestObjectStoreRoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewObjectStore(client, "review-results")
	ctx := context.Background()

	if _, err := store.Get(ctx, "review.json"); !errors.Is(err, domain.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}

	doc := []byte(`[{"review_id":"review_1"}]`)
	meta := map[string]string{"total-reviews": "1"}
	if err := store.Put(ctx, "review.json", doc, meta); err != nil {
		t.Fatalf("put: %v", err)
	}

	if !mr.Exists("obj:review-results:review.json") {
		t.Fatalf("expected namespaced redis key to be set")
	}
	if got := mr.HGet("obj:review-results:review.json:meta", "total-reviews"); got != "1" {
		t.Fatalf("expected metadata hash, got %q", got)
	}

	data, err := store.Get(ctx, "review.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != string(doc) {
		t.Fatalf("expected stored document back, got %s", data)
	}
}

func TestObjectStorePutOverwrites(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewObjectStore(client, "review-results")
	ctx := context.Background()

	if err := store.Put(ctx, "review.json", []byte("[]"), nil); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Put(ctx, "review.json", []byte(`[{"review_id":"review_1"}]`), nil); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	data, err := store.Get(ctx, "review.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(data) != `[{"review_id":"review_1"}]` {
		t.Fatalf("expected replaced document, got %s", data)
	}
}
