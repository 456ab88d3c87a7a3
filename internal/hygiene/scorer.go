package hygiene

import (
	"log/slog"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/idguard/internal/model"
)

// Scorer scores questionnaire submissions against a Bank.
type Scorer struct {
	bank     *Bank
	critical map[string]bool
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithCriticalQuestions replaces DefaultCriticalQuestions.
func WithCriticalQuestions(ids ...string) Option {
	return func(s *Scorer) {
		s.critical = make(map[string]bool, len(ids))
		for _, id := range ids {
			s.critical[id] = true
		}
	}
}

// WithClock sets the clock used for the score timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scorer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScorer returns a Scorer for bank.
func NewScorer(bank *Bank, opts ...Option) *Scorer {
	s := &Scorer{
		bank:   bank,
		now:    time.Now,
		logger: slog.Default(),
	}
	WithCriticalQuestions(DefaultCriticalQuestions...)(s)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bank returns the question bank the scorer works on.
func (s *Scorer) Bank() *Bank {
	return s.bank
}

// Score computes the category scores, the overall score and the narratives
// for answers, a map from question id to a value between 1 and 4.
//
// Answers to unknown questions and values outside 1-4 are skipped. A category
// with no usable answer gets no score and does not count toward the overall
// mean. When nothing usable is left the overall score is 0.
func (s *Scorer) Score(answers map[string]int) (*model.HygieneScore, error) {
	if s.bank == nil || s.bank.Len() == 0 {
		return nil, ErrEmptyBank
	}
	if len(answers) == 0 {
		return nil, ErrNoAnswers
	}
	for _, id := range slices.Sorted(maps.Keys(answers)) {
		if _, _, ok := s.bank.Question(id); !ok {
			s.logger.Debug("ignoring answer to unknown question", "question_id", id)
		}
	}

	score := &model.HygieneScore{
		Timestamp:         s.now(),
		CategoryScores:    make(map[string]int),
		CategoryRawScores: make(map[string]int),
		Responses:         make(map[string][]model.HygieneResponse),
	}

	var (
		strengths  []string
		weaknesses []weakness
		perAnswerS []string
		perAnswerW []weakness
		total      int
	)
	for _, c := range s.bank.categories {
		raw, answered := 0, 0
		for _, q := range c.Questions {
			value, ok := answers[q.ID]
			if !ok {
				continue
			}
			if value < model.MinAnswerValue || value > model.MaxAnswerValue {
				s.logger.Warn("ignoring out-of-range answer", "question_id", q.ID, "value", value)
				continue
			}
			raw += value
			answered++
			score.Responses[c.Name] = append(score.Responses[c.Name], model.HygieneResponse{
				QuestionID: q.ID,
				Question:   q.Question,
				Value:      value,
				Response:   q.Label(value),
			})

			strength, weak := answerNarrative(c.Name, q, value, s.critical[q.ID])
			if strength != "" {
				perAnswerS = append(perAnswerS, strength)
			}
			if weak != nil {
				perAnswerW = append(perAnswerW, *weak)
			}
		}
		if answered == 0 {
			continue
		}

		normalized := Normalize(raw, answered)
		score.CategoryScores[c.Name] = normalized
		score.CategoryRawScores[c.Name] = raw
		total += normalized

		strength, weak := categoryNarrative(c.Name, normalized)
		if strength != "" {
			strengths = append(strengths, strength)
		}
		if weak != nil {
			weaknesses = append(weaknesses, *weak)
		}
	}

	if n := len(score.CategoryScores); n > 0 {
		score.OverallScore = int(math.Round(float64(total) / float64(n)))
	}
	score.Strengths = finalizeStrengths(append(strengths, perAnswerS...))
	score.Weaknesses = finalizeWeaknesses(append(weaknesses, perAnswerW...))

	s.logger.Debug("scored questionnaire",
		"answers", len(answers),
		"categories", len(score.CategoryScores),
		"overall_score", score.OverallScore)
	return score, nil
}

// Normalize maps the raw sum of answered values onto 0-100.
// With answered questions the sum ranges from answered to 4*answered.
func Normalize(raw, answered int) int {
	if answered <= 0 {
		return 0
	}
	lo := float64(answered * model.MinAnswerValue)
	hi := float64(answered * model.MaxAnswerValue)
	pct := (float64(raw) - lo) / (hi - lo) * 100
	return int(math.Round(min(max(pct, 0), 100)))
}

// ParseAnswers converts form values to answer values. Keys whose value is
// not an integer are returned in skipped, sorted, and left out of answers.
func ParseAnswers(form map[string]string) (answers map[string]int, skipped []string) {
	answers = make(map[string]int, len(form))
	for id, v := range form {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			skipped = append(skipped, id)
			continue
		}
		answers[id] = n
	}
	slices.Sort(skipped)
	return answers, skipped
}
