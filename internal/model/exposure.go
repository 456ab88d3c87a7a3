package model

import (
	"maps"
	"slices"
	"time"
)

// Status tells whether an exposure check ran or was rejected.
type Status string

const (
	// StatusSuccess means the check ran. Individual providers may still have failed.
	StatusSuccess Status = "success"
	// StatusError means the input was rejected before any provider was called.
	StatusError Status = "error"
)

// InputType labels what kind of query an ExposureResult was produced for.
type InputType string

const (
	// InputEmail is an e-mail address.
	InputEmail InputType = "email"
	// InputFullName is a query made only of letters and spaces.
	InputFullName InputType = "full_name"
	// InputUsername is a query made only of letters, digits and underscores.
	InputUsername InputType = "username"
	// InputUnknown is any other query.
	InputUnknown InputType = "unknown"
)

// ExposureResult is the aggregated output for one query.
type ExposureResult struct {
	Status    Status    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Query     string    `json:"query"`
	InputType InputType `json:"input_type"`
	Timestamp time.Time `json:"timestamp"`
	RiskLevel RiskLevel `json:"risk_level"`

	Breaches []Breach          `json:"breaches"`
	Pastes   []Finding         `json:"pastes"`
	Leaks    []Finding         `json:"leaks"`
	FoundOn  []PlatformMention `json:"found_on"`

	// TotalBreaches counts breach-database hits plus both leak services' hits.
	TotalBreaches int `json:"total_breaches"`

	// ProviderErrors maps a provider name to the reason it produced nothing.
	ProviderErrors map[string]string `json:"provider_errors,omitempty"`
}

// NewErrorResult returns a rejected result carrying message.
func NewErrorResult(query string, inputType InputType, message string, now time.Time) *ExposureResult {
	return &ExposureResult{
		Status:    StatusError,
		Message:   message,
		Query:     query,
		InputType: inputType,
		Timestamp: now,
		RiskLevel: RiskLow,
		Breaches:  []Breach{},
		Pastes:    []Finding{},
		Leaks:     []Finding{},
		FoundOn:   []PlatformMention{},
	}
}

// IsSuccess reports whether the check ran.
func (r *ExposureResult) IsSuccess() bool {
	return r != nil && r.Status == StatusSuccess
}

// Clone returns a deep copy of r. Clone of nil is nil.
func (r *ExposureResult) Clone() *ExposureResult {
	if r == nil {
		return nil
	}
	out := *r
	out.Breaches = make([]Breach, len(r.Breaches))
	for i, b := range r.Breaches {
		b.DataClasses = slices.Clone(b.DataClasses)
		out.Breaches[i] = b
	}
	out.Pastes = cloneFindings(r.Pastes)
	out.Leaks = cloneFindings(r.Leaks)
	out.FoundOn = make([]PlatformMention, len(r.FoundOn))
	copy(out.FoundOn, r.FoundOn)
	if r.ProviderErrors != nil {
		out.ProviderErrors = maps.Clone(r.ProviderErrors)
	}
	return &out
}

func cloneFindings(in []Finding) []Finding {
	out := make([]Finding, len(in))
	copy(out, in)
	return out
}

// SensitiveFindings returns the pastes and leaks flagged as containing sensitive data.
func (r *ExposureResult) SensitiveFindings() []Finding {
	if r == nil {
		return nil
	}
	var out []Finding
	for _, f := range slices.Concat(r.Pastes, r.Leaks) {
		if f.ContainsSensitive {
			out = append(out, f)
		}
	}
	return out
}

// ExposureNarrative is the human-readable interpretation of a CombinedReport.
type ExposureNarrative struct {
	Findings        []string `json:"findings"`
	Recommendations []string `json:"recommendations"`
}

// CombinedReport joins the optional e-mail and username results of one check.
type CombinedReport struct {
	Email       string          `json:"email,omitempty"`
	Query       string          `json:"query,omitempty"`
	GeneratedAt time.Time       `json:"generated_at"`
	EmailResult *ExposureResult `json:"email_results,omitempty"`
	QueryResult *ExposureResult `json:"username_results,omitempty"`

	// CombinedRisk is the higher of the two results' risk levels.
	CombinedRisk RiskLevel `json:"combined_risk"`

	// PasteCount is the number of paste findings left after validation, across both results.
	PasteCount int `json:"paste_count"`

	Narrative *ExposureNarrative `json:"narrative,omitempty"`
}

// NewCombinedReport builds a CombinedReport from the given results.
// Either result may be nil.
func NewCombinedReport(emailResult, queryResult *ExposureResult, now time.Time) *CombinedReport {
	c := &CombinedReport{
		GeneratedAt: now,
		EmailResult: emailResult,
		QueryResult: queryResult,
	}
	if emailResult != nil {
		c.Email = emailResult.Query
	}
	if queryResult != nil {
		c.Query = queryResult.Query
	}
	c.Recompute()
	return c
}

// Recompute derives CombinedRisk and PasteCount from the embedded results.
func (c *CombinedReport) Recompute() {
	c.CombinedRisk = RiskLow
	c.PasteCount = 0
	for _, r := range c.Results() {
		if !r.IsSuccess() {
			continue
		}
		c.CombinedRisk = c.CombinedRisk.Escalate(r.RiskLevel)
		c.PasteCount += len(r.Pastes)
	}
}

// Results returns the non-nil results, e-mail first.
func (c *CombinedReport) Results() []*ExposureResult {
	var out []*ExposureResult
	if c.EmailResult != nil {
		out = append(out, c.EmailResult)
	}
	if c.QueryResult != nil {
		out = append(out, c.QueryResult)
	}
	return out
}

// TotalBreaches returns the e-mail result's breach total, or 0 without one.
func (c *CombinedReport) TotalBreaches() int {
	if !c.EmailResult.IsSuccess() {
		return 0
	}
	return c.EmailResult.TotalBreaches
}

// PlatformCount returns the number of platform mentions in the username result.
func (c *CombinedReport) PlatformCount() int {
	if !c.QueryResult.IsSuccess() {
		return 0
	}
	return len(c.QueryResult.FoundOn)
}
