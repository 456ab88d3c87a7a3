package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/nao1215/idguard/internal/hygiene"
	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/report"
)

// ExposureChecker runs a combined e-mail and query check.
type ExposureChecker interface {
	Check(ctx context.Context, email, query string) *model.CombinedReport
}

// Scorer scores questionnaire answers against its question bank.
type Scorer interface {
	Score(answers map[string]int) (*model.HygieneScore, error)
	Bank() *hygiene.Bank
}

// Recommender turns a hygiene score into a full report.
type Recommender interface {
	Recommend(ctx context.Context, score *model.HygieneScore) *model.HygieneReport
}

// Store persists reports. *database.ReportDB implements it.
type Store interface {
	Save(ctx context.Context, r *model.Report) (int64, error)
	Get(ctx context.Context, id int64) (*model.Report, error)
	ListPage(ctx context.Context, moduleType model.ModuleType, page, perPage int) ([]model.Report, int, error)
	Prune(ctx context.Context, moduleType model.ModuleType, keep int) (int64, error)
}

// Outcome is the result of one check: the report shown to the caller and
// what happened when it was saved.
type Outcome[T any] struct {
	Report T

	// ReportID is the id assigned by the store, or zero when not saved.
	ReportID int64

	// SaveErr is set when the store rejected the report. The report is
	// still complete.
	SaveErr error
}

// Saved reports whether the report was persisted.
func (o *Outcome[T]) Saved() bool {
	return o.ReportID != 0
}

// Service wires the core components to a store.
type Service struct {
	checker     ExposureChecker
	scorer      Scorer
	recommender Recommender
	store       Store
	batchSize   int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStore enables persistence. Without a store nothing is saved and
// history operations return ErrNoStore.
func WithStore(s Store) Option {
	return func(svc *Service) { svc.store = s }
}

// WithBatchConcurrency sets how many checks of a batch run at once.
func WithBatchConcurrency(n int) Option {
	return func(svc *Service) {
		if n > 0 {
			svc.batchSize = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.logger = l
		}
	}
}

// New returns a Service.
func New(checker ExposureChecker, scorer Scorer, recommender Recommender, opts ...Option) *Service {
	svc := &Service{
		checker:     checker,
		scorer:      scorer,
		recommender: recommender,
		batchSize:   2,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CheckExposure runs an exposure check for email and/or query and saves the report.
// Provider failures never make it fail: they show up inside the report.
func (s *Service) CheckExposure(ctx context.Context, email, query string) (*Outcome[*model.CombinedReport], error) {
	email, query = strings.TrimSpace(email), strings.TrimSpace(query)
	if email == "" && query == "" {
		return nil, ErrNoInput
	}

	s.logger.Info("running exposure check", "has_email", email != "", "has_query", query != "")
	combined := s.checker.Check(ctx, email, query)

	out := &Outcome[*model.CombinedReport]{Report: combined}
	if !anySucceeded(combined) {
		// Rejected input never reaches the history.
		return out, nil
	}
	r, err := report.AssembleExposure(combined)
	if err != nil {
		out.SaveErr = err
		return out, nil
	}
	out.ReportID, out.SaveErr = s.save(ctx, r)
	return out, nil
}

func anySucceeded(c *model.CombinedReport) bool {
	if c == nil {
		return false
	}
	for _, r := range c.Results() {
		if r.IsSuccess() {
			return true
		}
	}
	return false
}

// Questionnaire returns the question bank in display order.
func (s *Service) Questionnaire() []hygiene.Category {
	return s.scorer.Bank().Categories()
}

// AssessHygiene scores answers, builds the recommendations and saves the report.
// It fails only when there is nothing to score.
func (s *Service) AssessHygiene(ctx context.Context, answers map[string]int) (*Outcome[*model.HygieneReport], error) {
	score, err := s.scorer.Score(answers)
	if err != nil {
		return nil, err
	}
	hr := s.recommender.Recommend(ctx, score)

	out := &Outcome[*model.HygieneReport]{Report: hr}
	r, err := report.AssembleHygiene(hr)
	if err != nil {
		out.SaveErr = err
		return out, nil
	}
	out.ReportID, out.SaveErr = s.save(ctx, r)
	return out, nil
}

func (s *Service) save(ctx context.Context, r *model.Report) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	id, err := s.store.Save(ctx, r)
	if err != nil {
		s.logger.Warn("report not saved", "module", r.ModuleType, "error", err)
		return 0, err
	}
	s.logger.Debug("report saved", "module", r.ModuleType, "id", id)
	return id, nil
}
