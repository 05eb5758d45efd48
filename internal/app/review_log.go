package app

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"quiz-review-service/internal/domain"
)

// ObjectStore holds whole JSON documents at string keys (in-memory, Redis,
// Postgres). Get returns domain.ErrObjectNotFound for a missing key.
type ObjectStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, data []byte, metadata map[string]string) error
}

// ReviewLog maintains the shared review log: a single ordered JSON document of
// result records, mutated by read-modify-write upserts keyed on review_id.
//
// The mutex serializes upserts within one process only. There is no
// conditional write or version token across instances, so two concurrent
// instances can each read the same prior document and write back a version
// missing the other's update. Usage is assumed mostly sequential,
// single-writer-per-submission.
type ReviewLog struct {
	store ObjectStore
	key   string
	now   func() time.Time

	mu          sync.Mutex
	subscribers map[chan domain.ReviewResult]struct{}
}

func NewReviewLog(store ObjectStore, key string) *ReviewLog {
	return NewReviewLogWithClock(store, key, time.Now)
}

// NewReviewLogWithClock allows deterministic metadata timestamps in tests.
func NewReviewLogWithClock(store ObjectStore, key string, now func() time.Time) *ReviewLog {
	return &ReviewLog{
		store:       store,
		key:         key,
		now:         now,
		subscribers: make(map[chan domain.ReviewResult]struct{}),
	}
}

// Upsert inserts the record, or replaces the existing entry with the same
// review_id (comment amendments resubmit the full record). It returns the new
// total number of reviews in the log. An absent document reads as an empty
// log, not an error; the write-back replaces the whole document, so a storage
// fault leaves the log at its last-known-good state.
func (l *ReviewLog) Upsert(ctx context.Context, rec domain.ReviewResult) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	reviews, err := l.load(ctx)
	if err != nil {
		return 0, err
	}

	replaced := false
	for i := range reviews {
		if reviews[i].ReviewID == rec.ReviewID {
			reviews[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		reviews = append(reviews, rec)
	}

	data, err := json.MarshalIndent(reviews, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("marshal review log: %w", err)
	}
	metadata := map[string]string{
		"last-updated":  l.now().UTC().Format(time.RFC3339),
		"total-reviews": strconv.Itoa(len(reviews)),
	}
	if err := l.store.Put(ctx, l.key, data, metadata); err != nil {
		return 0, fmt.Errorf("write review log: %w", err)
	}

	l.broadcastLocked(rec)
	return len(reviews), nil
}

// Reviews returns the current contents of the log; an absent document is an
// empty log.
func (l *ReviewLog) Reviews(ctx context.Context) ([]domain.ReviewResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *ReviewLog) load(ctx context.Context) ([]domain.ReviewResult, error) {
	data, err := l.store.Get(ctx, l.key)
	if err == domain.ErrObjectNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read review log: %w", err)
	}
	var reviews []domain.ReviewResult
	if err := json.Unmarshal(data, &reviews); err != nil {
		return nil, fmt.Errorf("decode review log: %w", err)
	}
	return reviews, nil
}

// Subscribe returns a channel receiving every accepted record.
// The caller must invoke the returned cancel function to avoid leaks.
func (l *ReviewLog) Subscribe() (<-chan domain.ReviewResult, func()) {
	ch := make(chan domain.ReviewResult, 8)

	l.mu.Lock()
	l.subscribers[ch] = struct{}{}
	l.mu.Unlock()

	cancel := func() {
		l.mu.Lock()
		if _, ok := l.subscribers[ch]; ok {
			delete(l.subscribers, ch)
			close(ch)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

func (l *ReviewLog) broadcastLocked(rec domain.ReviewResult) {
	for ch := range l.subscribers {
		select {
		case ch <- rec:
		default:
			// Drop the oldest pending record so slow subscribers never block an upsert.
			select {
			case <-ch:
			default:
			}
			ch <- rec
		}
	}
}
