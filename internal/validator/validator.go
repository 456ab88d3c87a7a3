package validator

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/idguard/internal/model"
)

// DefaultConcurrency is the number of probes in flight at once.
const DefaultConcurrency = 4

// Validator filters the findings of an ExposureResult by URL reachability.
type Validator struct {
	prober      Prober
	concurrency int
	logger      *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithConcurrency sets the number of concurrent probes.
func WithConcurrency(n int) Option {
	return func(v *Validator) {
		if n > 0 {
			v.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) {
		if l != nil {
			v.logger = l
		}
	}
}

// New returns a Validator using prober. A nil prober means NewHTTPProber().
func New(prober Prober, opts ...Option) *Validator {
	if prober == nil {
		prober = NewHTTPProber()
	}
	v := &Validator{
		prober:      prober,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate returns a deep copy of result keeping only the pastes, leaks and
// platform mentions that have no URL or whose URL answered a probe. The
// input is never modified. A failed probe, including one cut short by ctx,
// drops the finding.
func (v *Validator) Validate(ctx context.Context, result *model.ExposureResult) *model.ExposureResult {
	out := result.Clone()
	if out == nil || !out.IsSuccess() {
		return out
	}

	reachable := v.probeAll(ctx, collectURLs(out))
	keep := func(u string) bool {
		u = strings.TrimSpace(u)
		return u == "" || reachable[u]
	}

	out.Pastes = filterFindings(out.Pastes, keep)
	out.Leaks = filterFindings(out.Leaks, keep)

	mentions := make([]model.PlatformMention, 0, len(out.FoundOn))
	for _, m := range out.FoundOn {
		if keep(m.URL) {
			mentions = append(mentions, m)
		}
	}
	out.FoundOn = mentions

	dropped := len(result.Pastes) + len(result.Leaks) + len(result.FoundOn) -
		len(out.Pastes) - len(out.Leaks) - len(out.FoundOn)
	if dropped > 0 {
		v.logger.Debug("dropped unreachable findings", "query", result.Query, "dropped", dropped)
	}
	return out
}

func filterFindings(in []model.Finding, keep func(string) bool) []model.Finding {
	out := make([]model.Finding, 0, len(in))
	for _, f := range in {
		if keep(f.URL) {
			out = append(out, f)
		}
	}
	return out
}

// collectURLs returns the distinct non-empty URLs of r.
func collectURLs(r *model.ExposureResult) []string {
	seen := make(map[string]bool)
	var urls []string
	add := func(u string) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			return
		}
		seen[u] = true
		urls = append(urls, u)
	}
	for _, f := range r.Pastes {
		add(f.URL)
	}
	for _, f := range r.Leaks {
		add(f.URL)
	}
	for _, m := range r.FoundOn {
		add(m.URL)
	}
	return urls
}

// probeAll probes urls concurrently and returns the reachable ones.
func (v *Validator) probeAll(ctx context.Context, urls []string) map[string]bool {
	var (
		mu        sync.Mutex
		reachable = make(map[string]bool, len(urls))
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(v.concurrency)
	for _, u := range urls {
		g.Go(func() error {
			ok := v.probe(ctx, u)
			mu.Lock()
			reachable[u] = ok
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // probes never return errors

	return reachable
}

// probe runs the prober, treating a panic as an unreachable URL.
func (v *Validator) probe(ctx context.Context, u string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			v.logger.Warn("url probe panicked", "url", u, "panic", r)
			ok = false
		}
	}()
	return v.prober.Probe(ctx, u)
}
