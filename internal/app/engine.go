package app

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"quiz-review-service/internal/domain"
)

// QuestionRepository loads question sets (from a file, a remote repository, or a cache).
type QuestionRepository interface {
	GetQuestions(ctx context.Context, path string) ([]domain.Question, error)
}

// ResultStore is the durable local record of submitted answers and per-reviewer progress.
type ResultStore interface {
	SaveResult(rec domain.ReviewResult) (string, error)
	UpdateComment(reviewID, comment string) (bool, error)
	AllResults() ([]domain.ReviewResult, error)
	Statistics() (domain.Statistics, error)
	SaveProgress(reviewer, category string, index int) error
	GetProgress(reviewer, category string) (*domain.ProgressCursor, error)
	ClearProgress(reviewer, category string) error
}

// Syncer transmits a result record to the remote review log. Implementations
// make a single attempt; the engine never retries.
type Syncer interface {
	Send(ctx context.Context, rec domain.ReviewResult) error
}

// Engine drives one reviewer through a category's question set: it shuffles
// choices per display, grades selections, persists results locally, mirrors
// them to the remote log best-effort, and keeps a progress cursor so an
// interrupted session resumes where it stopped.
//
// The engine is single-goroutine; only the submit-time remote sync runs
// detached. The local store is the source of truth, the remote log a mirror
// that may lag or miss entries.
type Engine struct {
	questions QuestionRepository
	store     ResultStore
	sync      Syncer
	now       func() time.Time
	rnd       *rand.Rand
	logf      func(format string, args ...any)

	reviewer string
	category string
	source   string

	set             []domain.Question
	current         int
	choices         []domain.ShuffledChoice
	selected        int
	correctIndex    int
	submitted       bool
	currentReviewID string

	wg sync.WaitGroup
}

func NewEngine(questions QuestionRepository, store ResultStore, sync Syncer, reviewer, category, source string) *Engine {
	return NewEngineWithClock(questions, store, sync, reviewer, category, source,
		time.Now, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewEngineWithClock injects the clock and random source for deterministic tests.
func NewEngineWithClock(questions QuestionRepository, store ResultStore, sync Syncer, reviewer, category, source string, now func() time.Time, rnd *rand.Rand) *Engine {
	return &Engine{
		questions: questions,
		store:     store,
		sync:      sync,
		now:       now,
		rnd:       rnd,
		logf:      log.Printf,
		reviewer:  reviewer,
		category:  category,
		source:    source,
		selected:  -1,
	}
}

// Load fetches the question set, filters it to the engine's category, and
// positions the session at the persisted progress cursor when one exists.
// An empty source or an empty filtered set fails the load; no partial session
// is started.
func (e *Engine) Load(ctx context.Context) error {
	data, err := e.questions.GetQuestions(ctx, e.source)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(data) == 0 {
		return domain.ErrEmptyQuestionSet
	}

	filtered := make([]domain.Question, 0, len(data))
	for _, q := range data {
		if q.Category == e.category {
			filtered = append(filtered, q)
		}
	}
	if len(filtered) == 0 {
		return fmt.Errorf("%w: %q", domain.ErrEmptyCategory, e.category)
	}
	e.set = filtered

	e.current = 0
	if cursor, err := e.store.GetProgress(e.reviewer, e.category); err == nil && cursor != nil {
		if cursor.QuestionIndex >= 0 && cursor.QuestionIndex < len(e.set) {
			e.current = cursor.QuestionIndex
		}
	}

	e.showQuestion()
	return nil
}

// showQuestion resets per-question state and reshuffles the choices, so every
// display of a question gets an independent permutation.
func (e *Engine) showQuestion() {
	e.selected = -1
	e.submitted = false
	e.currentReviewID = ""
	e.choices, e.correctIndex = ShuffleChoices(e.rnd, e.set[e.current].Choice)
}

// Select records the reviewer's choice. Re-selection after submission is
// rejected by the explicit submitted flag.
func (e *Engine) Select(idx int) error {
	if e.submitted {
		return domain.ErrAlreadySubmitted
	}
	if idx < 0 || idx >= len(e.choices) {
		return fmt.Errorf("choice index %d out of range", idx)
	}
	e.selected = idx
	return nil
}

// Submit grades the selected choice, writes the result to the local store
// (a hard failure if that write fails), dispatches a detached best-effort
// sync to the remote log, and persists the progress cursor.
func (e *Engine) Submit(ctx context.Context) (domain.ReviewResult, error) {
	if e.submitted {
		return domain.ReviewResult{}, domain.ErrAlreadySubmitted
	}
	if e.selected < 0 {
		return domain.ReviewResult{}, domain.ErrNoSelection
	}

	question := e.set[e.current]
	rec := domain.ReviewResult{
		QuestionID:    question.QuestionID,
		QuestionSet:   e.category,
		QuestionIndex: e.current,
		Keyword:       question.Keyword,
		Category:      question.Category,
		QuestionText:  question.Question,
		ReviewerName:  e.reviewer,
		Answer:        e.choices[e.selected].Text,
		CorrectAnswer: e.choices[e.correctIndex].Text,
		IsCorrect:     e.selected == e.correctIndex,
		Timestamp:     e.now().UTC().Format(time.RFC3339),
	}

	id, err := e.store.SaveResult(rec)
	if err != nil {
		return domain.ReviewResult{}, fmt.Errorf("save result: %w", err)
	}
	rec.ReviewID = id
	e.currentReviewID = id
	e.submitted = true

	// Fire-and-forget: sync failures are logged, never surfaced, and never
	// roll back the local save.
	e.wg.Add(1)
	go func(rec domain.ReviewResult) {
		defer e.wg.Done()
		if err := e.sync.Send(context.Background(), rec); err != nil {
			e.logf("remote sync failed for %s (kept locally): %v", rec.ReviewID, err)
		}
	}(rec)

	if err := e.store.SaveProgress(e.reviewer, e.category, e.current); err != nil {
		e.logf("save progress: %v", err)
	}
	return rec, nil
}

// Next amends the comment on the just-submitted review, then advances to the
// following question. On the last question it is a no-op; callers route to
// Complete instead.
func (e *Engine) Next(ctx context.Context, comment string) error {
	if !e.submitted {
		return domain.ErrNotSubmitted
	}
	e.amendComment(ctx, comment)

	if e.current >= len(e.set)-1 {
		return nil
	}
	e.current++
	if err := e.store.SaveProgress(e.reviewer, e.category, e.current); err != nil {
		e.logf("save progress: %v", err)
	}
	e.showQuestion()
	return nil
}

// Complete finishes the session: amends the final comment, deletes the
// progress cursor so a future load starts at index 0, and returns the
// reviewer's aggregate accuracy across all categories.
func (e *Engine) Complete(ctx context.Context, comment string) (domain.StatBucket, error) {
	if !e.submitted {
		return domain.StatBucket{}, domain.ErrNotSubmitted
	}
	e.amendComment(ctx, comment)

	if err := e.store.ClearProgress(e.reviewer, e.category); err != nil {
		e.logf("clear progress: %v", err)
	}

	stats, err := e.store.Statistics()
	if err != nil {
		return domain.StatBucket{}, fmt.Errorf("statistics: %w", err)
	}
	return stats.ByReviewer[e.reviewer], nil
}

// amendComment overwrites the comment of the current review and, when the
// comment is non-empty, awaits one resync of the amended record so remote and
// local comment state stay aligned. Resync failures are logged only.
func (e *Engine) amendComment(ctx context.Context, comment string) {
	if e.currentReviewID == "" {
		return
	}
	trimmed := strings.TrimSpace(comment)
	if _, err := e.store.UpdateComment(e.currentReviewID, trimmed); err != nil {
		e.logf("update comment: %v", err)
		return
	}
	if trimmed == "" {
		return
	}

	results, err := e.store.AllResults()
	if err != nil {
		e.logf("reload results for comment sync: %v", err)
		return
	}
	for _, rec := range results {
		if rec.ReviewID == e.currentReviewID {
			if err := e.sync.Send(ctx, rec); err != nil {
				e.logf("comment sync failed for %s: %v", rec.ReviewID, err)
			}
			return
		}
	}
}

// Question returns the question currently shown.
func (e *Engine) Question() domain.Question { return e.set[e.current] }

// Choices returns the current shuffled choices in display order.
func (e *Engine) Choices() []domain.ShuffledChoice { return e.choices }

// Index returns the zero-based position within the filtered set.
func (e *Engine) Index() int { return e.current }

// Total returns the number of questions in the filtered set.
func (e *Engine) Total() int { return len(e.set) }

// IsLast reports whether the current question is the final one.
func (e *Engine) IsLast() bool { return e.current == len(e.set)-1 }

// Submitted reports whether the current question has been answered.
func (e *Engine) Submitted() bool { return e.submitted }

// WaitSync blocks until all detached sync attempts have finished. Used at
// shutdown and in tests.
func (e *Engine) WaitSync() { e.wg.Wait() }
