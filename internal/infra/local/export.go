package local

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"quiz-review-service/internal/domain"
)

// csvHeader is the fixed export column order; it matches the wire field names
// of the remote submission endpoint.
var csvHeader = []string{
	"review_id", "question_id", "question_set", "question_index",
	"keyword", "category", "question_text", "reviewer_name",
	"answer", "correct_answer", "is_correct", "timestamp", "comment",
}

// ExportJSON writes every stored result as a pretty-printed JSON array.
func (s *Store) ExportJSON(w io.Writer) error {
	results, err := s.AllResults()
	if err != nil {
		return err
	}
	if results == nil {
		results = []domain.ReviewResult{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// ExportCSV writes every stored result as BOM-prefixed UTF-8 CSV with CRLF
// line endings and RFC-4180 quoting, so spreadsheet tools open it cleanly.
func (s *Store) ExportCSV(w io.Writer) error {
	results, err := s.AllResults()
	if err != nil {
		return err
	}

	if _, err := w.Write([]byte("\uFEFF")); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			r.ReviewID, r.QuestionID, r.QuestionSet, strconv.Itoa(r.QuestionIndex),
			r.Keyword, r.Category, r.QuestionText, r.ReviewerName,
			r.Answer, r.CorrectAnswer, strconv.FormatBool(r.IsCorrect), r.Timestamp, r.Comment,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportFile writes a timestamp-suffixed export ("json" or "csv") into dir and
// returns the created path.
func (s *Store) ExportFile(dir, format string) (string, error) {
	name := fmt.Sprintf("review_results_%s.%s", s.now().Format("20060102_150405"), format)
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export file: %w", err)
	}
	defer f.Close()

	switch format {
	case "json":
		err = s.ExportJSON(f)
	case "csv":
		err = s.ExportCSV(f)
	default:
		err = fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", err
	}
	return path, nil
}
