package model

import (
	"fmt"
	"strings"
)

// RiskLevel is the coarse verdict attached to exposure results and hygiene reports.
// The levels are totally ordered: RiskLow < RiskMedium < RiskHigh.
//
// The zero value is RiskLow, so a freshly constructed result starts at the
// lowest level and can only be escalated from there.
type RiskLevel int

const (
	// RiskLow means no meaningful exposure (or good hygiene practices).
	RiskLow RiskLevel = iota
	// RiskMedium means some exposure worth acting on.
	RiskMedium
	// RiskHigh means serious exposure that needs immediate attention.
	RiskHigh
)

// String returns the lower-case name used in JSON and in the database.
func (r RiskLevel) String() string {
	switch r {
	case RiskLow:
		return "low"
	case RiskMedium:
		return "medium"
	case RiskHigh:
		return "high"
	default:
		return "unknown"
	}
}

// ParseRiskLevel converts "low", "medium" or "high" (case-insensitive) to a RiskLevel.
func ParseRiskLevel(s string) (RiskLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "":
		return RiskLow, nil
	case "medium":
		return RiskMedium, nil
	case "high":
		return RiskHigh, nil
	default:
		return RiskLow, fmt.Errorf("%w: %q", ErrUnknownRiskLevel, s)
	}
}

// Escalate returns the higher of r and other. Risk never goes down.
func (r RiskLevel) Escalate(other RiskLevel) RiskLevel {
	if other > r {
		return other
	}
	return r
}

// AtLeast reports whether r is the same as or worse than other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return r >= other
}

// MaxRisk returns the highest level among levels, or RiskLow when levels is empty.
func MaxRisk(levels ...RiskLevel) RiskLevel {
	out := RiskLow
	for _, l := range levels {
		out = out.Escalate(l)
	}
	return out
}

// MarshalText implements encoding.TextMarshaler so RiskLevel is stored as a string.
func (r RiskLevel) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *RiskLevel) UnmarshalText(text []byte) error {
	level, err := ParseRiskLevel(string(text))
	if err != nil {
		return err
	}
	*r = level
	return nil
}
