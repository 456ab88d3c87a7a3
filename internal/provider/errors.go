package provider

import "errors"

var (
	// ErrNotConfigured is the failure reason of an adapter missing its credentials.
	ErrNotConfigured = errors.New("provider not configured")

	// ErrUnexpectedStatus is returned when a provider answers with an unhandled HTTP status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrMalformedResponse is returned when a provider payload cannot be decoded.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrJobNotFound is returned when the leak index no longer knows a search job.
	ErrJobNotFound = errors.New("search job not found")

	// ErrInvalidJobID is returned when the leak index hands out something that is not a UUID.
	ErrInvalidJobID = errors.New("invalid search job id")
)
