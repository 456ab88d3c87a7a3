package llm

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/nao1215/idguard/internal/model"
)

// Cache defaults.
const (
	DefaultCacheTTL  = time.Hour
	DefaultCacheSize = 100
)

// Supported backend names for Settings.Provider.
const (
	ProviderGemini = "gemini"
	ProviderOllama = "ollama"
)

// Advisor turns hygiene scores into advice through a Generator.
type Advisor struct {
	gen        Generator
	categories []string
	cacheTTL   time.Duration
	cacheSize  int
	now        func() time.Time
	logger     *slog.Logger
	cache      *cache
}

// AdvisorOption configures an Advisor.
type AdvisorOption func(*Advisor)

// WithCacheTTL sets how long advice is reused for an identical request.
// Zero disables the cache.
func WithCacheTTL(d time.Duration) AdvisorOption {
	return func(a *Advisor) {
		if d >= 0 {
			a.cacheTTL = d
		}
	}
}

// WithCacheSize sets the maximum number of cached replies.
func WithCacheSize(n int) AdvisorOption {
	return func(a *Advisor) {
		if n > 0 {
			a.cacheSize = n
		}
	}
}

// WithAdvisorClock sets the clock used for cache expiry.
func WithAdvisorClock(now func() time.Time) AdvisorOption {
	return func(a *Advisor) {
		if now != nil {
			a.now = now
		}
	}
}

// WithAdvisorLogger sets the logger.
func WithAdvisorLogger(l *slog.Logger) AdvisorOption {
	return func(a *Advisor) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdvisor returns an Advisor using gen. A nil gen yields an Advisor that
// reports itself unavailable. categories is the set a recommendation may name.
func NewAdvisor(gen Generator, categories []string, opts ...AdvisorOption) *Advisor {
	a := &Advisor{
		gen:        gen,
		categories: slices.Clone(categories),
		cacheTTL:   DefaultCacheTTL,
		cacheSize:  DefaultCacheSize,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.cache = newCache(a.cacheTTL, a.cacheSize, a.now)
	return a
}

// Available reports whether the Advisor has a backend to call.
func (a *Advisor) Available() bool {
	return a != nil && a.gen != nil
}

// Advise asks the backend for advice on req. Identical requests within the
// cache TTL are answered from the cache without calling the backend.
func (a *Advisor) Advise(ctx context.Context, req model.AdviceRequest) (*model.Advice, error) {
	if !a.Available() {
		return nil, ErrUnavailable
	}

	key := CacheKey(req)
	if advice, ok := a.cache.get(key); ok {
		a.logger.Debug("using cached llm advice", "backend", a.gen.Name())
		return advice, nil
	}

	prompt, err := BuildPrompt(req, a.categories)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("llm generation failed: %w", err)
	}
	advice, err := ParseAdvice(reply, a.categories)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("received llm advice",
		"backend", a.gen.Name(),
		"recommendations", len(advice.Recommendations),
		"duration", time.Since(start))

	a.cache.put(key, advice)
	return advice, nil
}

// CacheKey is the hex SHA3-256 of the canonical JSON of req.
// Map keys are sorted by encoding/json, so equal requests give equal keys.
func CacheKey(req model.AdviceRequest) string {
	data, err := json.Marshal([]any{req.OverallScore, req.CategoryScores, req.Strengths, req.Weaknesses})
	if err != nil {
		return ""
	}
	sum := sha3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Settings selects and configures a backend for NewDefaultAdvisor.
type Settings struct {
	// Enabled is the llm_reports feature flag.
	Enabled bool

	Provider      string
	GeminiBaseURL string
	GeminiAPIKey  string
	Model         string
	FallbackModel string
	OllamaBaseURL string

	Categories []string
	Timeout    time.Duration
	CacheTTL   time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewDefaultAdvisor builds the Advisor described by s. When the feature is
// off or the backend lacks what it needs, the Advisor is unavailable.
func NewDefaultAdvisor(s Settings) *Advisor {
	opts := []Option{WithTimeout(s.Timeout), WithUserAgent(s.UserAgent), WithLogger(s.Logger)}
	if s.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(s.HTTPClient))
	}

	var gen Generator
	switch {
	case !s.Enabled:
	case s.Provider == ProviderGemini && s.GeminiAPIKey != "":
		gen = NewGemini(s.GeminiBaseURL, s.GeminiAPIKey, s.Model, s.FallbackModel, opts...)
	case s.Provider == ProviderOllama && s.OllamaBaseURL != "" && s.Model != "":
		gen = NewOllama(s.OllamaBaseURL, s.Model, opts...)
	}

	return NewAdvisor(gen, s.Categories,
		WithCacheTTL(s.CacheTTL),
		WithAdvisorLogger(s.Logger))
}
