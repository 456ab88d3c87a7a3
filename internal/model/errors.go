package model

import "errors"

var (
	// ErrUnknownRiskLevel is returned when a risk level string is not low, medium or high.
	ErrUnknownRiskLevel = errors.New("unknown risk level")

	// ErrUnknownModuleType is returned when a report module type is not recognized.
	ErrUnknownModuleType = errors.New("unknown module type")

	// ErrUnknownPriority is returned when a recommendation priority is not high, medium or low.
	ErrUnknownPriority = errors.New("unknown priority")
)
