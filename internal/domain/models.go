package domain

// Question is one multiple-choice question from a question set.
// Choice[0] is always the correct answer; this is a contract with the
// question source and is never re-derived or validated here.
type Question struct {
	QuestionID   string   `json:"questionID"`
	Question     string   `json:"question"`
	Category     string   `json:"category"`
	Keyword      string   `json:"keyword,omitempty"`
	Year         string   `json:"year,omitempty"`
	ReferenceURL string   `json:"reference_url,omitempty"`
	Choice       []string `json:"choice"`
}

// ShuffledChoice is a displayed answer option paired with its position in the
// original choice list. Rebuilt on every question display.
type ShuffledChoice struct {
	Text          string
	OriginalIndex int
}

// ReviewResult is one answered-question record. ReviewID is immutable once
// assigned; Comment is the only field mutated after creation.
// Answer and CorrectAnswer hold the displayed option texts, not shuffled
// indices, so records stay readable independent of shuffle state.
type ReviewResult struct {
	ReviewID      string `json:"review_id"`
	QuestionID    string `json:"question_id"`
	QuestionSet   string `json:"question_set"`
	QuestionIndex int    `json:"question_index"`
	Keyword       string `json:"keyword"`
	Category      string `json:"category"`
	QuestionText  string `json:"question_text"`
	ReviewerName  string `json:"reviewer_name"`
	Answer        string `json:"answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Timestamp     string `json:"timestamp"`
	Comment       string `json:"comment"`
}

// ProgressCursor marks the last question index reached by a reviewer within a
// category. At most one cursor exists per (reviewer, category) pair.
type ProgressCursor struct {
	QuestionIndex int    `json:"questionIndex"`
	Timestamp     string `json:"timestamp"`
}

// ResultFilter selects a subset of stored results. Zero values match all.
type ResultFilter struct {
	ReviewerName string
	Category     string
	QuestionSet  string
	IsCorrect    *bool
}

// StatBucket aggregates correctness counts for one grouping key.
type StatBucket struct {
	Total     int     `json:"total"`
	Correct   int     `json:"correct"`
	Incorrect int     `json:"incorrect"`
	Accuracy  float64 `json:"accuracy"`
}

// Statistics summarizes all stored results globally and grouped by category,
// reviewer, and question set. An empty store yields the zero value with
// initialized maps.
type Statistics struct {
	Total         int                   `json:"total"`
	Correct       int                   `json:"correct"`
	Incorrect     int                   `json:"incorrect"`
	Accuracy      float64               `json:"accuracy"`
	ByCategory    map[string]StatBucket `json:"byCategory"`
	ByReviewer    map[string]StatBucket `json:"byReviewer"`
	ByQuestionSet map[string]StatBucket `json:"byQuestionSet"`
}
