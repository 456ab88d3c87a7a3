package exposure

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/provider"
)

// DefaultConcurrency is the number of provider calls in flight at once.
const DefaultConcurrency = 4

// mentionResults is how many search hits are read per platform.
const mentionResults = 5

// Validator removes unreachable findings from a result. It must return a
// new value and leave its argument alone.
type Validator interface {
	Validate(ctx context.Context, result *model.ExposureResult) *model.ExposureResult
}

// Aggregator runs exposure checks against the providers of a Registry.
type Aggregator struct {
	registry          *provider.Registry
	validator         Validator
	platforms         []Platform
	includeUnverified bool
	concurrency       int
	now               func() time.Time
	logger            *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithValidator sets the link validator. Without one, findings are kept as
// the providers returned them.
func WithValidator(v Validator) Option {
	return func(a *Aggregator) { a.validator = v }
}

// WithPlatforms replaces DefaultPlatforms.
func WithPlatforms(p []Platform) Option {
	return func(a *Aggregator) {
		if len(p) > 0 {
			a.platforms = p
		}
	}
}

// WithIncludeUnverified asks the breach database for unverified breaches too.
func WithIncludeUnverified(include bool) Option {
	return func(a *Aggregator) { a.includeUnverified = include }
}

// WithConcurrency sets the number of provider calls in flight at once.
func WithConcurrency(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithClock sets the clock used for result timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New returns an Aggregator over registry. A nil registry has every
// provider disabled.
func New(registry *provider.Registry, opts ...Option) *Aggregator {
	if registry == nil {
		registry = provider.NewRegistry()
	}
	a := &Aggregator{
		registry:    registry,
		platforms:   DefaultPlatforms,
		concurrency: DefaultConcurrency,
		now:         time.Now,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// providerErrors collects failure reasons from concurrent provider calls.
type providerErrors struct {
	mu      sync.Mutex
	reasons map[string]string
}

func (e *providerErrors) record(name, reason string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.reasons == nil {
		e.reasons = make(map[string]string)
	}
	if prev, ok := e.reasons[name]; ok {
		reason = prev + "; " + reason
	}
	e.reasons[name] = reason
}

func (e *providerErrors) result() map[string]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reasons
}

// call runs fn and converts a panic into a failed Result.
func call[T any](logger *slog.Logger, name string, fn func() provider.Result[T]) (res provider.Result[T]) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("provider panicked", "provider", name, "panic", r)
			res = provider.Failure[T](name, fmt.Sprintf("panic: %v", r))
		}
	}()
	return fn()
}

// items returns the items of res, recording its failure in errs.
func items[T any](logger *slog.Logger, errs *providerErrors, query string, res provider.Result[T]) []T {
	if !res.OK() {
		logger.Warn("provider failed", "provider", res.Provider, "query", query, "reason", res.Reason)
		errs.record(res.Provider, res.Reason)
	}
	return res.List()
}

// CheckEmail checks an e-mail address against the breach database, the
// paste search and both leak services. An address that is not
// local@domain.tld yields an error result without contacting any provider.
func (a *Aggregator) CheckEmail(ctx context.Context, email string) *model.ExposureResult {
	email = strings.TrimSpace(email)
	now := a.now()
	if !IsValidEmail(email) {
		return model.NewErrorResult(email, model.InputEmail, "Invalid email format", now)
	}

	var (
		errs     providerErrors
		breaches []model.Breach
		pastes   []model.Finding
		darkWeb  []model.Finding
		leaks    []model.Finding
	)

	g := new(errgroup.Group)
	g.SetLimit(a.concurrency)
	if src := a.registry.Breach(); src != nil {
		g.Go(func() error {
			res := call(a.logger, src.Name(), func() provider.Result[model.Breach] {
				return src.Breaches(ctx, email, a.includeUnverified)
			})
			breaches = items(a.logger, &errs, email, res)
			return nil
		})
	}
	if src := a.registry.Pastes(); src != nil {
		g.Go(func() error {
			pastes = a.find(ctx, &errs, src, emailSearchTerm(email))
			return nil
		})
	}
	if src := a.registry.DarkWeb(); src != nil {
		g.Go(func() error {
			darkWeb = a.find(ctx, &errs, src, email)
			return nil
		})
	}
	if src := a.registry.LeakIndex(); src != nil {
		g.Go(func() error {
			leaks = a.find(ctx, &errs, src, email)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // provider calls never return errors

	result := a.newResult(email, model.InputEmail, now)
	result.Breaches = dedupeBreaches(breaches)
	result.Pastes = markSensitive(dedupeFindings(pastes), emailSensitive)
	result.Leaks = markSensitive(dedupeFindings(append(darkWeb, leaks...)), emailSensitive)
	result.ProviderErrors = errs.result()

	result = a.validate(ctx, result)
	result.TotalBreaches = len(result.Breaches) + len(result.Leaks)
	result.RiskLevel = EmailRisk(result.Breaches, len(result.Pastes)+len(result.Leaks))

	a.logger.Debug("email check done",
		"email", email,
		"risk", result.RiskLevel,
		"breaches", len(result.Breaches),
		"pastes", len(result.Pastes),
		"leaks", len(result.Leaks),
	)
	return result
}

// CheckQuery checks a username or full name: one site-restricted search
// per platform, then the paste search. Queries shorter than MinQueryLength
// yield an error result without contacting any provider.
func (a *Aggregator) CheckQuery(ctx context.Context, query string) *model.ExposureResult {
	query = strings.TrimSpace(query)
	now := a.now()
	if queryTooShort(query) {
		return model.NewErrorResult(query, ClassifyQuery(query),
			fmt.Sprintf("Query must be at least %d characters", MinQueryLength), now)
	}
	inputType := ClassifyQuery(query)

	var (
		errs     providerErrors
		mentions = make([]*model.PlatformMention, len(a.platforms))
		pastes   []model.Finding
	)

	g := new(errgroup.Group)
	g.SetLimit(a.concurrency)
	if search := a.registry.Search(); search != nil {
		for i, p := range a.platforms {
			g.Go(func() error {
				mentions[i] = a.mention(ctx, &errs, search, p, query)
				return nil
			})
		}
	}
	if src := a.registry.Pastes(); src != nil {
		g.Go(func() error {
			pastes = a.find(ctx, &errs, src, query)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // provider calls never return errors

	result := a.newResult(query, inputType, now)
	for _, m := range mentions {
		if m != nil {
			result.FoundOn = append(result.FoundOn, *m)
		}
	}
	result.Pastes = markSensitive(dedupeFindings(pastes), func(s string) bool {
		return querySensitive(s, query)
	})
	result.ProviderErrors = errs.result()

	result = a.validate(ctx, result)
	result.RiskLevel = QueryRisk(len(result.FoundOn), result.Pastes)

	a.logger.Debug("query check done",
		"query", query,
		"input_type", inputType,
		"risk", result.RiskLevel,
		"platforms", len(result.FoundOn),
		"pastes", len(result.Pastes),
	)
	return result
}

// Check runs the e-mail and query checks concurrently and combines them.
// An empty email or query skips that half.
func (a *Aggregator) Check(ctx context.Context, email, query string) *model.CombinedReport {
	var emailResult, queryResult *model.ExposureResult

	var wg sync.WaitGroup
	if strings.TrimSpace(email) != "" {
		wg.Go(func() { emailResult = a.CheckEmail(ctx, email) })
	}
	if strings.TrimSpace(query) != "" {
		wg.Go(func() { queryResult = a.CheckQuery(ctx, query) })
	}
	wg.Wait()

	report := model.NewCombinedReport(emailResult, queryResult, a.now())
	report.Narrative = Narrate(report)
	return report
}

func (a *Aggregator) find(ctx context.Context, errs *providerErrors, src provider.FindingSource, query string) []model.Finding {
	res := call(a.logger, src.Name(), func() provider.Result[model.Finding] {
		return src.Find(ctx, query)
	})
	return items(a.logger, errs, query, res)
}

// mention searches one platform and returns its first hit on the platform,
// or nil.
func (a *Aggregator) mention(ctx context.Context, errs *providerErrors, search provider.Searcher, p Platform, query string) *model.PlatformMention {
	res := call(a.logger, search.Name(), func() provider.Result[provider.SearchItem] {
		return search.Search(ctx, p.siteQuery(query), mentionResults)
	})
	for _, item := range items(a.logger, errs, query, res) {
		if !p.owns(item.Link) {
			continue
		}
		return &model.PlatformMention{
			Platform:  p.Name,
			URL:       item.Link,
			Title:     item.Title,
			Snippet:   item.Snippet,
			Confirmed: false,
			Note:      model.UnconfirmedMentionNote,
		}
	}
	return nil
}

func (a *Aggregator) newResult(query string, inputType model.InputType, now time.Time) *model.ExposureResult {
	return &model.ExposureResult{
		Status:    model.StatusSuccess,
		Query:     query,
		InputType: inputType,
		Timestamp: now,
		RiskLevel: model.RiskLow,
		Breaches:  []model.Breach{},
		Pastes:    []model.Finding{},
		Leaks:     []model.Finding{},
		FoundOn:   []model.PlatformMention{},
	}
}

func (a *Aggregator) validate(ctx context.Context, r *model.ExposureResult) *model.ExposureResult {
	if a.validator == nil {
		return r
	}
	if v := a.validator.Validate(ctx, r); v != nil {
		return v
	}
	return r
}

// markSensitive returns findings with ContainsSensitive set from their excerpt.
func markSensitive(findings []model.Finding, sensitive func(string) bool) []model.Finding {
	out := make([]model.Finding, len(findings))
	for i, f := range findings {
		out[i] = f.WithSensitive(sensitive(f.Excerpt))
	}
	return out
}

func dedupeFindings(in []model.Finding) []model.Finding {
	seen := make(map[string]bool, len(in))
	out := make([]model.Finding, 0, len(in))
	for _, f := range in {
		if seen[f.Key()] {
			continue
		}
		seen[f.Key()] = true
		out = append(out, f)
	}
	return out
}

func dedupeBreaches(in []model.Breach) []model.Breach {
	seen := make(map[string]bool, len(in))
	out := make([]model.Breach, 0, len(in))
	for _, b := range in {
		if seen[b.Name] {
			continue
		}
		seen[b.Name] = true
		out = append(out, b)
	}
	return out
}
