package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// ModuleType tells which feature produced a stored Report.
type ModuleType string

const (
	// ModuleExposure is an identity exposure check.
	ModuleExposure ModuleType = "exposure"
	// ModuleHygiene is a digital hygiene assessment.
	ModuleHygiene ModuleType = "hygiene"
)

// ParseModuleType validates s as a ModuleType.
func ParseModuleType(s string) (ModuleType, error) {
	switch m := ModuleType(s); m {
	case ModuleExposure, ModuleHygiene:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownModuleType, s)
	}
}

// Summary holds only what a history listing needs to render one row.
type Summary struct {
	Timestamp time.Time `json:"timestamp"`
	Risk      RiskLevel `json:"risk"`

	// Subject is a masked e-mail address or the username query.
	Subject string `json:"subject,omitempty"`

	// Score is set for hygiene reports only.
	Score *int `json:"score,omitempty"`

	TotalBreaches       int `json:"total_breaches,omitempty"`
	PasteCount          int `json:"paste_count,omitempty"`
	PlatformCount       int `json:"platform_count,omitempty"`
	WeaknessCount       int `json:"weakness_count,omitempty"`
	RecommendationCount int `json:"recommendation_count,omitempty"`
}

// Report is the persisted shape of a finished check.
//
// ID is zero until the store assigns one. FullReport holds the complete
// JSON document needed to re-render the report later; listings leave it nil.
type Report struct {
	ID         int64           `json:"report_id"`
	Timestamp  time.Time       `json:"timestamp"`
	ModuleType ModuleType      `json:"module_type"`
	Summary    Summary         `json:"summary"`
	FullReport json.RawMessage `json:"full_report,omitempty"`
}
