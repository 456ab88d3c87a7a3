package model

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// AnswerOption is one selectable answer of a questionnaire question.
// Value runs from 1 (worst practice) to 4 (best practice).
type AnswerOption struct {
	Value int    `json:"value"`
	Text  string `json:"text"`
}

// Question is one item of the digital hygiene questionnaire.
type Question struct {
	ID       string         `json:"id"`
	Question string         `json:"question"`
	Options  []AnswerOption `json:"options"`
}

// Label returns the option text for value, or an empty string when the
// question has no option with that value.
func (q Question) Label(value int) string {
	for _, o := range q.Options {
		if o.Value == value {
			return o.Text
		}
	}
	return ""
}

// MinAnswerValue and MaxAnswerValue bound every answer value.
const (
	MinAnswerValue = 1
	MaxAnswerValue = 4
)

// HygieneResponse records one answered question.
type HygieneResponse struct {
	QuestionID string `json:"question_id"`
	Question   string `json:"question"`
	Value      int    `json:"value"`
	Response   string `json:"response"`
}

// HygieneScore is the scored questionnaire.
type HygieneScore struct {
	Timestamp time.Time `json:"timestamp"`

	// CategoryScores holds the 0-100 score of every category with at least one answer.
	CategoryScores map[string]int `json:"category_scores"`

	// CategoryRawScores holds the sum of answer values per scored category.
	CategoryRawScores map[string]int `json:"category_raw_scores"`

	Responses    map[string][]HygieneResponse `json:"raw_responses"`
	OverallScore int                          `json:"overall_score"`
	Strengths    []string                     `json:"strengths"`
	Weaknesses   []string                     `json:"weaknesses"`
}

// ScoredCategories returns the categories that have a score, sorted by name.
func (s *HygieneScore) ScoredCategories() []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.CategoryScores))
	for c := range s.CategoryScores {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// Priority is the urgency of a Recommendation.
type Priority string

const (
	// PriorityHigh maps to the immediate action plan horizon.
	PriorityHigh Priority = "high"
	// PriorityMedium maps to the short-term horizon.
	PriorityMedium Priority = "medium"
	// PriorityLow maps to the long-term horizon.
	PriorityLow Priority = "low"
)

// ParsePriority converts a priority name (case-insensitive) to a Priority.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPriority, s)
	}
}

// Recommendation is one actionable piece of advice.
type Recommendation struct {
	Category string   `json:"category"`
	Text     string   `json:"recommendation"`
	Priority Priority `json:"priority"`
}

// ActionPlan groups advice by time horizon.
type ActionPlan struct {
	Immediate []string `json:"immediate"`
	ShortTerm []string `json:"short_term"`
	LongTerm  []string `json:"long_term"`
}

// IsEmpty reports whether all three horizons are empty.
func (p ActionPlan) IsEmpty() bool {
	return len(p.Immediate) == 0 && len(p.ShortTerm) == 0 && len(p.LongTerm) == 0
}

// Advice is what an LLM collaborator returns for a hygiene score.
type Advice struct {
	Recommendations []Recommendation `json:"recommendations"`
	ActionPlan      ActionPlan       `json:"action_plan"`
}

// AdviceRequest is the input handed to an LLM collaborator.
type AdviceRequest struct {
	OverallScore   int            `json:"overall_score"`
	CategoryScores map[string]int `json:"category_scores"`
	Strengths      []string       `json:"strengths"`
	Weaknesses     []string       `json:"weaknesses"`
}

// HygieneSummaryData is the compact projection kept for history listings.
type HygieneSummaryData struct {
	Score           int              `json:"score"`
	Risk            RiskLevel        `json:"risk"`
	CategoryScores  map[string]int   `json:"category_scores"`
	Strengths       []string         `json:"strengths"`
	Weaknesses      []string         `json:"weaknesses"`
	Recommendations []Recommendation `json:"recommendations"`
	ActionPlan      ActionPlan       `json:"action_plan"`
}

// HygieneReport is the final, user-facing result of a hygiene assessment.
type HygieneReport struct {
	ReportVersion        string             `json:"report_version"`
	GeneratedAt          time.Time          `json:"generated_at"`
	OverallScore         int                `json:"overall_score"`
	CategoryScores       map[string]int     `json:"category_scores"`
	Strengths            []string           `json:"strengths"`
	Weaknesses           []string           `json:"weaknesses"`
	Recommendations      []Recommendation   `json:"recommendations"`
	ActionPlan           ActionPlan         `json:"action_plan"`
	RiskLevel            RiskLevel          `json:"risk_level"`
	RiskLevelDescription string             `json:"risk_level_description"`
	Summary              string             `json:"summary"`
	AIAugmented          bool               `json:"ai_augmented"`
	VerificationMethod   string             `json:"verification_method"`
	SummaryData          HygieneSummaryData `json:"summary_data"`
}
