package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidTimeout is returned when a request, validation or LLM timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown are given.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownLLMProvider is returned when llm.provider is neither gemini nor ollama.
	ErrUnknownLLMProvider = errors.New("unknown llm provider: must be gemini or ollama")

	// ErrNoHygieneCategories is returned when the category list is empty.
	ErrNoHygieneCategories = errors.New("no hygiene categories configured")

	// ErrInvalidMaxSavedReports is returned when max_saved_reports is not positive.
	ErrInvalidMaxSavedReports = errors.New("invalid max_saved_reports: must be positive")

	// ErrInvalidPolling is returned when the leak index poll settings are unusable.
	ErrInvalidPolling = errors.New("invalid polling: attempts must be positive and interval non-negative")

	// ErrInvalidCacheDuration is returned when the LLM cache duration is negative.
	ErrInvalidCacheDuration = errors.New("invalid cache duration: must be non-negative")

	// ErrInvalidDuration is returned when a duration in the config file cannot be parsed.
	ErrInvalidDuration = errors.New("invalid duration")
)
