package local

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"quiz-review-service/internal/domain"
)

const (
	resultsFile  = "review_results.json"
	progressFile = "review_progress.json"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Store is the durable local result store: an append-only JSON array of
// review results plus a JSON map of progress cursors keyed
// "<reviewer>__<category>", both kept as whole files in a data directory.
// Every mutation rewrites the affected file via a temp file and rename.
type Store struct {
	dir string
	now func() time.Time
	rnd *rand.Rand
	mu  sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	return NewStoreWithClock(dir, time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewStoreWithClock injects the clock and random source used for review id
// generation, for deterministic tests.
func NewStoreWithClock(dir string, now func() time.Time, rnd *rand.Rand) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Store{dir: dir, now: now, rnd: rnd}, nil
}

// SaveResult appends the record to the results log and returns its generated
// review id: review_<unix-millis>_<8 random chars>. Collisions are possible
// but accepted as negligible; this is not a uniqueness guarantee. A failed
// write surfaces as an error so a submission never silently appears to
// succeed without a durable record.
func (s *Store) SaveResult(rec domain.ReviewResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.loadResults()
	if err != nil {
		return "", err
	}

	rec.ReviewID = fmt.Sprintf("review_%d_%s", s.now().UnixMilli(), s.randomSuffix(8))
	if rec.Timestamp == "" {
		rec.Timestamp = s.now().UTC().Format(time.RFC3339)
	}
	results = append(results, rec)

	if err := s.writeJSON(resultsFile, results); err != nil {
		return "", fmt.Errorf("save review result: %w", err)
	}
	return rec.ReviewID, nil
}

// UpdateComment overwrites the comment of the record with the given id and
// rewrites the log. A missing id is not an error; it reports false.
func (s *Store) UpdateComment(reviewID, comment string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.loadResults()
	if err != nil {
		return false, err
	}

	found := false
	for i := range results {
		if results[i].ReviewID == reviewID {
			results[i].Comment = comment
			found = true
			break
		}
	}
	if !found {
		return false, nil
	}

	if err := s.writeJSON(resultsFile, results); err != nil {
		return false, fmt.Errorf("update comment: %w", err)
	}
	return true, nil
}

// AllResults returns every stored record in creation order.
func (s *Store) AllResults() ([]domain.ReviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadResults()
}

// FilterResults returns the records matching every set field of the filter.
func (s *Store) FilterResults(f domain.ResultFilter) ([]domain.ReviewResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.loadResults()
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.ReviewResult, 0, len(results))
	for _, r := range results {
		if f.ReviewerName != "" && r.ReviewerName != f.ReviewerName {
			continue
		}
		if f.Category != "" && r.Category != f.Category {
			continue
		}
		if f.QuestionSet != "" && r.QuestionSet != f.QuestionSet {
			continue
		}
		if f.IsCorrect != nil && r.IsCorrect != *f.IsCorrect {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// Statistics computes global and grouped totals with accuracy rounded to two
// decimals. An empty store yields zero counts and initialized group maps.
func (s *Store) Statistics() (domain.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := s.loadResults()
	if err != nil {
		return domain.Statistics{}, err
	}

	stats := domain.Statistics{
		ByCategory:    make(map[string]domain.StatBucket),
		ByReviewer:    make(map[string]domain.StatBucket),
		ByQuestionSet: make(map[string]domain.StatBucket),
	}
	if len(results) == 0 {
		return stats, nil
	}

	for _, r := range results {
		stats.Total++
		if r.IsCorrect {
			stats.Correct++
		} else {
			stats.Incorrect++
		}
		bump(stats.ByCategory, r.Category, r.IsCorrect)
		bump(stats.ByReviewer, r.ReviewerName, r.IsCorrect)
		bump(stats.ByQuestionSet, r.QuestionSet, r.IsCorrect)
	}

	stats.Accuracy = accuracy(stats.Correct, stats.Total)
	for _, group := range []map[string]domain.StatBucket{stats.ByCategory, stats.ByReviewer, stats.ByQuestionSet} {
		for key, bucket := range group {
			bucket.Accuracy = accuracy(bucket.Correct, bucket.Total)
			group[key] = bucket
		}
	}
	return stats, nil
}

// SaveProgress creates or overwrites the cursor for (reviewer, category).
func (s *Store) SaveProgress(reviewer, category string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursors, err := s.loadProgress()
	if err != nil {
		return err
	}
	cursors[progressKey(reviewer, category)] = domain.ProgressCursor{
		QuestionIndex: index,
		Timestamp:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.writeJSON(progressFile, cursors); err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

// GetProgress returns the cursor for (reviewer, category), or nil when none exists.
func (s *Store) GetProgress(reviewer, category string) (*domain.ProgressCursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursors, err := s.loadProgress()
	if err != nil {
		return nil, err
	}
	if cursor, ok := cursors[progressKey(reviewer, category)]; ok {
		return &cursor, nil
	}
	return nil, nil
}

// ClearProgress deletes the cursor for (reviewer, category).
func (s *Store) ClearProgress(reviewer, category string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursors, err := s.loadProgress()
	if err != nil {
		return err
	}
	delete(cursors, progressKey(reviewer, category))
	if err := s.writeJSON(progressFile, cursors); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	return nil
}

// ClearAll removes every stored result. Irreversible.
func (s *Store) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(filepath.Join(s.dir, resultsFile)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear results: %w", err)
	}
	return nil
}

func (s *Store) loadResults() ([]domain.ReviewResult, error) {
	var results []domain.ReviewResult
	if err := s.readJSON(resultsFile, &results); err != nil {
		return nil, fmt.Errorf("read results: %w", err)
	}
	return results, nil
}

func (s *Store) loadProgress() (map[string]domain.ProgressCursor, error) {
	cursors := make(map[string]domain.ProgressCursor)
	if err := s.readJSON(progressFile, &cursors); err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	return cursors, nil
}

func (s *Store) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func (s *Store) writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(s.dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func (s *Store) randomSuffix(length int) string {
	suffix := make([]byte, length)
	for i := range suffix {
		suffix[i] = idAlphabet[s.rnd.Intn(len(idAlphabet))]
	}
	return string(suffix)
}

func progressKey(reviewer, category string) string {
	return reviewer + "__" + category
}

func bump(group map[string]domain.StatBucket, key string, correct bool) {
	bucket := group[key]
	bucket.Total++
	if correct {
		bucket.Correct++
	} else {
		bucket.Incorrect++
	}
	group[key] = bucket
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(total)*100*100) / 100
}
