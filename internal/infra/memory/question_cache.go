package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"quiz-review-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// QuestionLoader fetches a question set from a backing source (file, remote repository).
type QuestionLoader interface {
	Fetch(ctx context.Context, path string) ([]domain.Question, error)
}

// QuestionCache caches question sets per source path with TTL to avoid
// repeated source hits; concurrent misses for the same path are collapsed.
type QuestionCache struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedSet
}

type cachedSet struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionCache(loader QuestionLoader, ttl time.Duration) *QuestionCache {
	return &QuestionCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedSet),
	}
}

func (c *QuestionCache) GetQuestions(ctx context.Context, path string) ([]domain.Question, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[path]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.questions, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(path, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[path]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.questions, nil
		}
		c.mu.RUnlock()

		questions, err := c.loader.Fetch(ctx, path)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.cache[path] = cachedSet{
			questions: questions,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (c *QuestionCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader serves question sets from an in-memory map (tests/demos).
type StaticQuestionLoader struct {
	sets map[string][]domain.Question
}

func NewStaticQuestionLoader(sets map[string][]domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{sets: sets}
}

func (l *StaticQuestionLoader) Fetch(_ context.Context, path string) ([]domain.Question, error) {
	if questions, ok := l.sets[path]; ok {
		return questions, nil
	}
	return nil, domain.ErrSourceNotFound
}
