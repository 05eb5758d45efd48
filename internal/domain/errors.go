package domain

import "errors"

var (
	// ErrEmptyQuestionSet is returned when a question source yields no questions.
	ErrEmptyQuestionSet = errors.New("question data is empty")
	// ErrEmptyCategory is returned when filtering leaves no questions for the target category.
	ErrEmptyCategory = errors.New("no questions found for category")
	// ErrNoSelection is returned when submitting before an answer was selected.
	ErrNoSelection = errors.New("no answer selected")
	// ErrAlreadySubmitted is returned when submitting the same question twice.
	ErrAlreadySubmitted = errors.New("answer already submitted")
	// ErrNotSubmitted is returned when advancing before the current question was submitted.
	ErrNotSubmitted = errors.New("answer not yet submitted")
	// ErrObjectNotFound indicates the requested key does not exist in object storage.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidSourceURL indicates a source URL does not match the expected repository shape.
	ErrInvalidSourceURL = errors.New("invalid source URL")
	// ErrSourceNotFound indicates the question file could not be found at the source.
	ErrSourceNotFound = errors.New("question file not found")
	// ErrSourceForbidden indicates the source refused access (rate limit or private repository).
	ErrSourceForbidden = errors.New("source access restricted")
	// ErrMalformedContent indicates the source returned content that is not a question array.
	ErrMalformedContent = errors.New("malformed question content")
)
