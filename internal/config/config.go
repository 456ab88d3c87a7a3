package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// AppName is the application name used for XDG directory paths.
const AppName = "idguard"

// Default provider endpoints. Every one of them can be overridden in the
// config file, which is how tests and self-hosted mirrors point idguard elsewhere.
const (
	DefaultHIBPBaseURL    = "https://haveibeenpwned.com/api/v3/"
	DefaultSearchBaseURL  = "https://www.googleapis.com/customsearch/v1"
	DefaultArchiveBaseURL = "https://web.archive.org/cdx/search/cdx"
	DefaultDarkWebBaseURL = "https://ahmia.fi"
	DefaultLeakIndexURL   = "https://free.intelx.io"
	DefaultGeminiBaseURL  = "https://generativelanguage.googleapis.com/v1beta"
	DefaultOllamaBaseURL  = "http://127.0.0.1:11434"
)

// Default values for the remaining settings.
const (
	// DefaultRequestTimeout bounds every provider call.
	DefaultRequestTimeout = 10 * time.Second

	// DefaultValidationTimeout bounds each URL reachability probe.
	DefaultValidationTimeout = 10 * time.Second

	// DefaultLLMTimeout bounds one LLM generation request.
	DefaultLLMTimeout = 30 * time.Second

	// DefaultCacheDuration is how long LLM advice is reused for an identical score.
	DefaultCacheDuration = time.Hour

	// DefaultLLMProvider selects the Gemini backend.
	DefaultLLMProvider = LLMProviderGemini

	// DefaultLLMModel is the primary Gemini model.
	DefaultLLMModel = "gemini-2.0-flash"

	// DefaultLLMFallbackModel is tried when the primary model fails.
	DefaultLLMFallbackModel = "gemini-1.5-flash-001"

	// DefaultMaxSavedReports is the default number of rows in history listings.
	DefaultMaxSavedReports = 5

	// DefaultConcurrency is the number of provider calls or URL probes in flight at once.
	DefaultConcurrency = 4

	// DefaultPollAttempts bounds how often the asynchronous leak index is polled.
	DefaultPollAttempts = 5

	// DefaultPollInterval is the delay between two polls of the leak index.
	DefaultPollInterval = 2 * time.Second

	// DefaultTorProxyAddress is the standard Tor SOCKS5 proxy address.
	DefaultTorProxyAddress = "127.0.0.1:9050"

	// DefaultTorStartupTimeout is the maximum time to wait for the embedded Tor
	// daemon to bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultListenAddress is where `idguard serve` listens. Localhost only,
	// since the API has no authentication.
	DefaultListenAddress = "127.0.0.1:8080"

	// DefaultUserAgent identifies idguard to the providers.
	DefaultUserAgent = "idguard"
)

// Supported LLM backends.
const (
	LLMProviderGemini = "gemini"
	LLMProviderOllama = "ollama"
)

// DefaultHygieneCategories is the category order used when the config file names none.
var DefaultHygieneCategories = []string{
	"account_security",
	"data_sharing",
	"device_security",
	"social_media",
	"browsing_habits",
}

// Config holds every runtime option of idguard.
// It is built by NewConfig, overlaid with the config file and environment by
// Apply and ApplyEnv, then overlaid with CLI flags, and finally checked by Validate.
type Config struct {
	// ConfigFilePath is the explicit --config path. Empty means search the
	// default locations (see FindConfigFile).
	ConfigFilePath string

	// Provider credentials. Normally supplied through the environment.
	HIBPAPIKey   string
	GoogleAPIKey string
	GoogleCSEID  string
	GeminiAPIKey string
	LeakBAPIKey  string

	// Provider endpoints.
	HIBPBaseURL    string
	SearchBaseURL  string
	ArchiveBaseURL string
	DarkWebBaseURL string
	LeakIndexURL   string
	GeminiBaseURL  string
	OllamaBaseURL  string

	// Feature flags.
	EnableEmailMonitoring    bool
	EnableUsernameMonitoring bool
	EnablePasteSearch        bool
	EnableDarkWebSearch      bool
	EnableLeakIndex          bool
	EnableLLMReports         bool

	// IncludeUnverified asks the breach database for unverified breaches too.
	IncludeUnverified bool

	// ValidateURLs turns the reachability probe of finding URLs on or off.
	ValidateURLs bool

	// HygieneCategories is the ordered list of questionnaire categories.
	HygieneCategories []string

	// QuestionBankPath replaces the embedded question bank when set.
	QuestionBankPath string

	RequestTimeout    time.Duration
	ValidationTimeout time.Duration
	Concurrency       int
	PollAttempts      int
	PollInterval      time.Duration

	// LLM settings.
	LLMProvider      string
	LLMModel         string
	LLMFallbackModel string
	LLMTimeout       time.Duration
	CacheDuration    time.Duration

	// MaxSavedReports is the default length of history listings.
	MaxSavedReports int

	// Tor settings for the dark-web search. UseTor routes that provider
	// through a SOCKS5 proxy; UseExternalTor uses TorProxyAddress instead
	// of starting an embedded daemon.
	UseTor            bool
	UseExternalTor    bool
	TorProxyAddress   string
	TorStartupTimeout time.Duration

	// DBDir is the directory holding the SQLite report store.
	DBDir string

	// SaveReports controls whether finished checks are persisted.
	SaveReports bool

	// ListenAddress is the address of the HTTP API.
	ListenAddress string

	UserAgent string

	// Verbose enables debug logging.
	Verbose bool

	// Output format flags. JSONReport and MarkdownReport are mutually exclusive.
	JSONReport     bool
	MarkdownReport bool
	ReportFile     string
}

// NewConfig returns a Config populated with the defaults above.
func NewConfig() *Config {
	return &Config{
		HIBPBaseURL:              DefaultHIBPBaseURL,
		SearchBaseURL:            DefaultSearchBaseURL,
		ArchiveBaseURL:           DefaultArchiveBaseURL,
		DarkWebBaseURL:           DefaultDarkWebBaseURL,
		LeakIndexURL:             DefaultLeakIndexURL,
		GeminiBaseURL:            DefaultGeminiBaseURL,
		OllamaBaseURL:            DefaultOllamaBaseURL,
		EnableEmailMonitoring:    true,
		EnableUsernameMonitoring: true,
		EnablePasteSearch:        true,
		EnableDarkWebSearch:      true,
		EnableLeakIndex:          true,
		EnableLLMReports:         true,
		ValidateURLs:             true,
		HygieneCategories:        slices.Clone(DefaultHygieneCategories),
		RequestTimeout:           DefaultRequestTimeout,
		ValidationTimeout:        DefaultValidationTimeout,
		Concurrency:              DefaultConcurrency,
		PollAttempts:             DefaultPollAttempts,
		PollInterval:             DefaultPollInterval,
		LLMProvider:              DefaultLLMProvider,
		LLMModel:                 DefaultLLMModel,
		LLMFallbackModel:         DefaultLLMFallbackModel,
		LLMTimeout:               DefaultLLMTimeout,
		CacheDuration:            DefaultCacheDuration,
		MaxSavedReports:          DefaultMaxSavedReports,
		TorProxyAddress:          DefaultTorProxyAddress,
		TorStartupTimeout:        DefaultTorStartupTimeout,
		DBDir:                    XDGDataDir(),
		SaveReports:              true,
		ListenAddress:            DefaultListenAddress,
		UserAgent:                DefaultUserAgent,
	}
}

// XDGDataDir returns the XDG data directory for idguard (the report store lives here).
// On Linux: ~/.local/share/idguard
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for idguard.
// On Linux: ~/.config/idguard
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for idguard.
// The embedded Tor daemon keeps its state here.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate returns the first problem found in the configuration.
func (c *Config) Validate() error {
	if c.RequestTimeout <= 0 || c.ValidationTimeout <= 0 || c.LLMTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.LLMProvider != LLMProviderGemini && c.LLMProvider != LLMProviderOllama {
		return ErrUnknownLLMProvider
	}
	if len(c.HygieneCategories) == 0 {
		return ErrNoHygieneCategories
	}
	if c.MaxSavedReports <= 0 {
		return ErrInvalidMaxSavedReports
	}
	if c.PollAttempts <= 0 || c.PollInterval < 0 {
		return ErrInvalidPolling
	}
	if c.CacheDuration < 0 {
		return ErrInvalidCacheDuration
	}
	return nil
}

// LLMConfigured reports whether the selected LLM backend has what it needs to run.
// Gemini needs an API key; Ollama only needs a model name.
func (c *Config) LLMConfigured() bool {
	switch c.LLMProvider {
	case LLMProviderGemini:
		return c.GeminiAPIKey != ""
	case LLMProviderOllama:
		return c.LLMModel != "" && c.OllamaBaseURL != ""
	default:
		return false
	}
}
