package database

import "errors"

var (
	// ErrDatabaseNotFound is returned by Open when the database file is
	// missing and Options.CreateIfNotExists is false.
	ErrDatabaseNotFound = errors.New("database not found")

	// ErrNilReport is returned by Save when given a nil report.
	ErrNilReport = errors.New("report is nil")

	// ErrInvalidLimit is returned when a listing limit or page is not positive.
	ErrInvalidLimit = errors.New("limit and page must be positive")
)
