package app_test

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"quiz-review-service/internal/app"
	"quiz-review-service/internal/domain"
	"quiz-review-service/internal/infra/local"
	"quiz-review-service/internal/infra/memory"
)

const testSource = "questions.json"

func TestFullSessionProducesOneResultPerQuestion(t *testing.T) {
	ctx := context.Background()
	engine, store, syncer := newTestEngine(t, threeQuestions())

	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if engine.Total() != 3 {
		t.Fatalf("expected 3 questions, got %d", engine.Total())
	}

	for i := 0; i < 3; i++ {
		if err := engine.Select(0); err != nil {
			t.Fatalf("select q%d: %v", i, err)
		}
		if _, err := engine.Submit(ctx); err != nil {
			t.Fatalf("submit q%d: %v", i, err)
		}
		if engine.IsLast() {
			if _, err := engine.Complete(ctx, ""); err != nil {
				t.Fatalf("complete: %v", err)
			}
		} else if err := engine.Next(ctx, ""); err != nil {
			t.Fatalf("next q%d: %v", i, err)
		}
	}
	engine.WaitSync()

	results, err := store.AllResults()
	if err != nil {
		t.Fatalf("all results: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	ids := make(map[string]bool)
	for i, r := range results {
		if r.QuestionIndex != i {
			t.Fatalf("expected question_index %d in creation order, got %d", i, r.QuestionIndex)
		}
		if ids[r.ReviewID] {
			t.Fatalf("duplicate review id %s", r.ReviewID)
		}
		ids[r.ReviewID] = true
	}
	if got := len(syncer.sent()); got != 3 {
		t.Fatalf("expected 3 sync attempts, got %d", got)
	}

	// Completing the set clears the cursor, so a fresh load starts at 0.
	if cursor, _ := store.GetProgress("alice", "geography"); cursor != nil {
		t.Fatalf("expected cursor cleared after complete, got %+v", cursor)
	}
}

func TestGradingCapturesDisplayedTexts(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t, []domain.Question{{
		QuestionID: "q1",
		Question:   "Capital of France?",
		Category:   "geography",
		Choice:     []string{"Paris", "Lyon", "Nice"},
	}})

	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}

	lyon := -1
	for i, c := range engine.Choices() {
		if c.Text == "Lyon" {
			lyon = i
		}
	}
	if lyon == -1 {
		t.Fatalf("Lyon missing from shuffled choices: %+v", engine.Choices())
	}
	if err := engine.Select(lyon); err != nil {
		t.Fatalf("select: %v", err)
	}

	rec, err := engine.Submit(ctx)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.IsCorrect {
		t.Fatalf("Lyon should be graded incorrect")
	}
	if rec.Answer != "Lyon" || rec.CorrectAnswer != "Paris" {
		t.Fatalf("expected answer=Lyon correct_answer=Paris, got %q / %q", rec.Answer, rec.CorrectAnswer)
	}

	if _, err := engine.Complete(ctx, "interesting"); err != nil {
		t.Fatalf("complete: %v", err)
	}
	engine.WaitSync()

	results, err := store.AllResults()
	if err != nil {
		t.Fatalf("all results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected exactly one record, got %d", len(results))
	}
	if results[0].Comment != "interesting" {
		t.Fatalf("expected amended comment, got %q", results[0].Comment)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t, threeQuestions())

	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := engine.Select(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := engine.Submit(ctx); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := engine.Submit(ctx); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected ErrAlreadySubmitted, got %v", err)
	}
	if err := engine.Select(0); !errors.Is(err, domain.ErrAlreadySubmitted) {
		t.Fatalf("expected re-selection rejected after submit, got %v", err)
	}
	engine.WaitSync()
}

func TestSubmitWithoutSelection(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t, threeQuestions())

	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, err := engine.Submit(ctx); !errors.Is(err, domain.ErrNoSelection) {
		t.Fatalf("expected ErrNoSelection, got %v", err)
	}
}

func TestLoadFailsOnEmptySource(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t, []domain.Question{})

	err := engine.Load(ctx)
	if !errors.Is(err, domain.ErrEmptyQuestionSet) {
		t.Fatalf("expected ErrEmptyQuestionSet, got %v", err)
	}
}

func TestLoadFailsOnEmptyCategory(t *testing.T) {
	ctx := context.Background()
	engine, _, _ := newTestEngine(t, []domain.Question{{
		QuestionID: "q1",
		Question:   "irrelevant",
		Category:   "history",
		Choice:     []string{"a", "b"},
	}})

	err := engine.Load(ctx)
	if !errors.Is(err, domain.ErrEmptyCategory) {
		t.Fatalf("expected ErrEmptyCategory, got %v", err)
	}
}

func TestLoadResumesFromProgressCursor(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t, threeQuestions())

	if err := store.SaveProgress("alice", "geography", 2); err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if engine.Index() != 2 {
		t.Fatalf("expected resume at index 2, got %d", engine.Index())
	}
	if !engine.IsLast() {
		t.Fatalf("index 2 of 3 should be the last question")
	}
}

func TestLoadIgnoresStaleProgressCursor(t *testing.T) {
	ctx := context.Background()
	engine, store, _ := newTestEngine(t, threeQuestions())

	if err := store.SaveProgress("alice", "geography", 99); err != nil {
		t.Fatalf("seed progress: %v", err)
	}
	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if engine.Index() != 0 {
		t.Fatalf("expected out-of-range cursor ignored, got index %d", engine.Index())
	}
}

func TestSyncFailureNeverSurfaces(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := local.NewStoreWithClock(dir, testClock(), rand.New(rand.NewSource(5)))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	questions := memory.NewQuestionCache(memory.NewStaticQuestionLoader(map[string][]domain.Question{
		testSource: threeQuestions(),
	}), time.Minute)
	failing := &failingSyncer{}
	engine := app.NewEngineWithClock(questions, store, failing, "alice", "geography", testSource,
		testClock(), rand.New(rand.NewSource(9)))

	if err := engine.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := engine.Select(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := engine.Submit(ctx); err != nil {
		t.Fatalf("submit must succeed despite sync failure: %v", err)
	}
	if err := engine.Next(ctx, "still noted"); err != nil {
		t.Fatalf("next must succeed despite comment resync failure: %v", err)
	}
	engine.WaitSync()

	results, err := store.AllResults()
	if err != nil {
		t.Fatalf("all results: %v", err)
	}
	if len(results) != 1 || results[0].Comment != "still noted" {
		t.Fatalf("local record must remain authoritative, got %+v", results)
	}
}

func newTestEngine(t *testing.T, questions []domain.Question) (*app.Engine, *local.Store, *recordingSyncer) {
	t.Helper()
	store, err := local.NewStoreWithClock(t.TempDir(), testClock(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	cache := memory.NewQuestionCache(memory.NewStaticQuestionLoader(map[string][]domain.Question{
		testSource: questions,
	}), time.Minute)
	syncer := &recordingSyncer{}
	engine := app.NewEngineWithClock(cache, store, syncer, "alice", "geography", testSource,
		testClock(), rand.New(rand.NewSource(11)))
	return engine, store, syncer
}

// testClock advances one millisecond per call so generated ids stay distinct.
func testClock() func() time.Time {
	base := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	calls := 0
	return func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Millisecond)
	}
}

func threeQuestions() []domain.Question {
	return []domain.Question{
		{QuestionID: "q1", Question: "Capital of France?", Category: "geography", Choice: []string{"Paris", "Lyon", "Nice"}},
		{QuestionID: "q2", Question: "Capital of Japan?", Category: "geography", Choice: []string{"Tokyo", "Osaka", "Kyoto"}},
		{QuestionID: "q3", Question: "Capital of Italy?", Category: "geography", Choice: []string{"Rome", "Milan", "Turin"}},
	}
}

type recordingSyncer struct {
	mu   sync.Mutex
	recs []domain.ReviewResult
}

func (s *recordingSyncer) Send(_ context.Context, rec domain.ReviewResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *recordingSyncer) sent() []domain.ReviewResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ReviewResult, len(s.recs))
	copy(out, s.recs)
	return out
}

type failingSyncer struct{}

func (s *failingSyncer) Send(_ context.Context, _ domain.ReviewResult) error {
	return errors.New("endpoint unreachable")
}
