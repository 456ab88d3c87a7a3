package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/nao1215/idguard/internal/model"
)

// Report metadata.
const (
	ReportVersion      = "1.3"
	VerificationMethod = "idguard digital hygiene assessment"
)

// backfillLimit caps how many recommendations fill an empty action plan horizon.
const backfillLimit = 2

// Advisor is the optional LLM collaborator.
type Advisor interface {
	// Available reports whether Advise can be called at all.
	Available() bool
	Advise(ctx context.Context, req model.AdviceRequest) (*model.Advice, error)
}

// Engine builds hygiene reports.
type Engine struct {
	advisor Advisor
	now     func() time.Time
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAdvisor sets the LLM collaborator. Without one, reports are rule-based.
func WithAdvisor(a Advisor) Option {
	return func(e *Engine) { e.advisor = a }
}

// WithClock sets the clock used for generated_at.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New returns an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recommend builds the report for score. A nil score is treated as an empty
// questionnaire. The returned report always has at least one recommendation.
func (e *Engine) Recommend(ctx context.Context, score *model.HygieneScore) *model.HygieneReport {
	if score == nil {
		score = &model.HygieneScore{}
	}

	risk, description := RiskTier(score.OverallScore)
	report := &model.HygieneReport{
		ReportVersion:        ReportVersion,
		GeneratedAt:          e.now(),
		OverallScore:         score.OverallScore,
		CategoryScores:       maps.Clone(score.CategoryScores),
		Strengths:            slices.Clone(score.Strengths),
		Weaknesses:           slices.Clone(score.Weaknesses),
		RiskLevel:            risk,
		RiskLevelDescription: description,
		VerificationMethod:   VerificationMethod,
	}
	if report.CategoryScores == nil {
		report.CategoryScores = map[string]int{}
	}

	var recs recommendationSet
	recs.add(keywordRecommendations(score.Weaknesses)...)
	recs.add(categoryRecommendations(score.ScoredCategories(), score.CategoryScores)...)

	var plan actionPlan
	if advice := e.advise(ctx, report); advice != nil {
		recs.add(advice.Recommendations...)
		plan.merge(advice.ActionPlan)
		report.AIAugmented = true
	}

	if recs.len() == 0 {
		e.logger.Debug("no rule or llm recommendations, using fallback set")
		recs.add(fallbackRecommendations...)
	}
	report.Recommendations = recs.list()
	report.ActionPlan = plan.finalize(report.Recommendations)

	if report.OverallScore == 100 && len(report.Weaknesses) == 0 {
		report.Summary = perfectSummary(report)
	} else {
		report.Summary = Summarize(report)
	}

	report.SummaryData = model.HygieneSummaryData{
		Score:           report.OverallScore,
		Risk:            report.RiskLevel,
		CategoryScores:  report.CategoryScores,
		Strengths:       report.Strengths,
		Weaknesses:      report.Weaknesses,
		Recommendations: report.Recommendations,
		ActionPlan:      report.ActionPlan,
	}

	e.logger.Debug("built hygiene report",
		"overall_score", report.OverallScore,
		"risk", report.RiskLevel,
		"recommendations", len(report.Recommendations),
		"ai_augmented", report.AIAugmented)
	return report
}

// advise calls the collaborator, recovering from any failure. It returns nil
// when there is no usable advice.
func (e *Engine) advise(ctx context.Context, report *model.HygieneReport) (advice *model.Advice) {
	if e.advisor == nil || !e.advisor.Available() {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("llm advisor panicked", "panic", fmt.Sprint(r))
			advice = nil
		}
	}()

	advice, err := e.advisor.Advise(ctx, model.AdviceRequest{
		OverallScore:   report.OverallScore,
		CategoryScores: report.CategoryScores,
		Strengths:      report.Strengths,
		Weaknesses:     report.Weaknesses,
	})
	if err != nil {
		e.logger.Warn("llm advice unavailable, keeping rule-based recommendations", "error", err)
		return nil
	}
	return advice
}

// recommendationSet keeps recommendations in insertion order, unique by
// case-insensitive text.
type recommendationSet struct {
	seen  map[string]bool
	items []model.Recommendation
}

func (s *recommendationSet) add(recs ...model.Recommendation) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	for _, r := range recs {
		key := strings.ToLower(strings.TrimSpace(r.Text))
		if key == "" || s.seen[key] {
			continue
		}
		s.seen[key] = true
		s.items = append(s.items, r)
	}
}

func (s *recommendationSet) len() int { return len(s.items) }

func (s *recommendationSet) list() []model.Recommendation { return slices.Clone(s.items) }

type actionPlan struct {
	immediate, shortTerm, longTerm []string
}

func (p *actionPlan) merge(in model.ActionPlan) {
	p.immediate = appendUnique(p.immediate, in.Immediate...)
	p.shortTerm = appendUnique(p.shortTerm, in.ShortTerm...)
	p.longTerm = appendUnique(p.longTerm, in.LongTerm...)
}

// finalize backfills empty horizons from recs by priority and makes sure
// the long-term horizon is never empty.
func (p *actionPlan) finalize(recs []model.Recommendation) model.ActionPlan {
	out := model.ActionPlan{
		Immediate: fill(p.immediate, recs, model.PriorityHigh),
		ShortTerm: fill(p.shortTerm, recs, model.PriorityMedium),
		LongTerm:  fill(p.longTerm, recs, model.PriorityLow),
	}
	if len(out.LongTerm) == 0 {
		out.LongTerm = []string{longTermReminder}
	}
	return out
}

func fill(bucket []string, recs []model.Recommendation, priority model.Priority) []string {
	bucket = appendUnique(nil, bucket...)
	if len(bucket) > 0 {
		return bucket
	}
	for _, r := range recs {
		if len(bucket) == backfillLimit {
			break
		}
		if r.Priority == priority {
			bucket = appendUnique(bucket, r.Text)
		}
	}
	if bucket == nil {
		bucket = []string{}
	}
	return bucket
}

// appendUnique appends the items of add not already in dst, comparing
// case-insensitively.
func appendUnique(dst []string, add ...string) []string {
	for _, a := range add {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if slices.ContainsFunc(dst, func(s string) bool { return strings.EqualFold(s, a) }) {
			continue
		}
		dst = append(dst, a)
	}
	return dst
}
