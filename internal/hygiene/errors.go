package hygiene

import "errors"

var (
	// ErrEmptyBank is returned when a question bank has no question in any configured category.
	ErrEmptyBank = errors.New("question bank is empty")

	// ErrInvalidBank is returned when a question bank cannot be decoded or is inconsistent.
	ErrInvalidBank = errors.New("invalid question bank")

	// ErrNoAnswers is returned when a submission contains no answer at all.
	ErrNoAnswers = errors.New("no answers submitted")
)
