package provider

import (
	"log/slog"
	"time"
)

// Registry holds the adapters of one process. It is built once at startup
// from configuration and handed to the aggregator; tests build one from
// fakes. A nil adapter means the provider is disabled.
type Registry struct {
	breach    BreachSource
	search    Searcher
	pastes    FindingSource
	darkWeb   FindingSource
	leakIndex FindingSource
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithBreachSource sets the breach database.
func WithBreachSource(s BreachSource) RegistryOption {
	return func(r *Registry) { r.breach = s }
}

// WithSearcher sets the search engine used for platform mentions.
func WithSearcher(s Searcher) RegistryOption {
	return func(r *Registry) { r.search = s }
}

// WithPasteSource sets the paste search.
func WithPasteSource(s FindingSource) RegistryOption {
	return func(r *Registry) { r.pastes = s }
}

// WithDarkWebSource sets leak-service A.
func WithDarkWebSource(s FindingSource) RegistryOption {
	return func(r *Registry) { r.darkWeb = s }
}

// WithLeakIndexSource sets leak-service B.
func WithLeakIndexSource(s FindingSource) RegistryOption {
	return func(r *Registry) { r.leakIndex = s }
}

// NewRegistry returns a Registry holding the given adapters.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Breach returns the breach database, or nil when disabled.
func (r *Registry) Breach() BreachSource { return r.breach }

// Search returns the search engine, or nil when disabled.
func (r *Registry) Search() Searcher { return r.search }

// Pastes returns the paste search, or nil when disabled.
func (r *Registry) Pastes() FindingSource { return r.pastes }

// DarkWeb returns leak-service A, or nil when disabled.
func (r *Registry) DarkWeb() FindingSource { return r.darkWeb }

// LeakIndex returns leak-service B, or nil when disabled.
func (r *Registry) LeakIndex() FindingSource { return r.leakIndex }

// Settings is what NewDefaultRegistry needs from the configuration.
type Settings struct {
	HIBPAPIKey   string
	GoogleAPIKey string
	GoogleCSEID  string
	LeakBAPIKey  string

	HIBPBaseURL    string
	SearchBaseURL  string
	ArchiveBaseURL string
	DarkWebBaseURL string
	LeakIndexURL   string

	EnableBreaches    bool
	EnableSearch      bool
	EnablePasteSearch bool
	EnableDarkWeb     bool
	EnableLeakIndex   bool

	RequestTimeout time.Duration
	UserAgent      string
	PollAttempts   int
	PollInterval   time.Duration

	// DarkWebClient, when set, carries the dark-web search. The CLI passes a
	// client that dials through Tor.
	DarkWebClient HTTPDoer

	Logger *slog.Logger
}

// NewDefaultRegistry wires the real adapters according to s.
func NewDefaultRegistry(s Settings) *Registry {
	common := []Option{
		WithTimeout(s.RequestTimeout),
		WithUserAgent(s.UserAgent),
		WithLogger(s.Logger),
	}

	var opts []RegistryOption
	if s.EnableBreaches {
		opts = append(opts, WithBreachSource(NewHIBP(s.HIBPBaseURL, s.HIBPAPIKey, common...)))
	}

	var search Searcher
	if s.EnableSearch || s.EnablePasteSearch {
		search = NewGoogleSearch(s.SearchBaseURL, s.GoogleAPIKey, s.GoogleCSEID, common...)
	}
	if s.EnableSearch {
		opts = append(opts, WithSearcher(search))
	}
	if s.EnablePasteSearch {
		archive := NewWayback(s.ArchiveBaseURL, common...)
		opts = append(opts, WithPasteSource(NewPasteSearch(archive, search, WithPasteLogger(s.Logger))))
	}
	if s.EnableDarkWeb {
		darkWebOpts := append([]Option{}, common...)
		if s.DarkWebClient != nil {
			darkWebOpts = append(darkWebOpts, WithHTTPClient(s.DarkWebClient))
		}
		opts = append(opts, WithDarkWebSource(NewDarkWebSearch(s.DarkWebBaseURL, darkWebOpts...)))
	}
	if s.EnableLeakIndex {
		index := NewLeakIndex(s.LeakIndexURL, s.LeakBAPIKey, common...)
		opts = append(opts, WithLeakIndexSource(NewAsyncPoller(index,
			WithPollAttempts(s.PollAttempts),
			WithPollInterval(s.PollInterval),
			WithPollLogger(s.Logger),
		)))
	}
	return NewRegistry(opts...)
}
