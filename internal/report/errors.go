package report

import "errors"

var (
	// ErrWrongModuleType is returned when a stored report is decoded as the other module.
	ErrWrongModuleType = errors.New("report has a different module type")

	// ErrNoFullReport is returned when a stored report carries no full report.
	ErrNoFullReport = errors.New("report has no full report")
)
