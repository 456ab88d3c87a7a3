package service

import "errors"

var (
	// ErrNoInput is returned when an exposure check names neither an
	// e-mail address nor a query.
	ErrNoInput = errors.New("an e-mail address or a query is required")

	// ErrNoStore is returned by history operations when reports are not persisted.
	ErrNoStore = errors.New("report history is disabled")

	// ErrReportNotFound is returned when no report has the requested id.
	ErrReportNotFound = errors.New("report not found")
)
