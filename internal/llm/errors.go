package llm

import "errors"

var (
	// ErrUnavailable is returned by an Advisor that has no backend.
	ErrUnavailable = errors.New("llm backend not available")

	// ErrNoJSON is returned when a reply contains no JSON object.
	ErrNoJSON = errors.New("no JSON object in llm reply")

	// ErrInvalidAdvice is returned when the JSON object does not have the expected shape.
	ErrInvalidAdvice = errors.New("invalid advice")

	// ErrUnexpectedStatus is returned when a backend answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrEmptyReply is returned when a backend answers without any text.
	ErrEmptyReply = errors.New("empty llm reply")

	// ErrBlocked is returned when Gemini refuses the prompt.
	ErrBlocked = errors.New("prompt blocked")
)
