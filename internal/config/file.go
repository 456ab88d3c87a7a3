package config

import (
	"fmt"
	"time"
)

// File is the structure of the YAML configuration file.
// Every field is optional; unset fields keep the value already in Config.
type File struct {
	APIKeys   APIKeys        `yaml:"api_keys,omitempty"`
	Providers ProviderURLs   `yaml:"providers,omitempty"`
	Features  Features       `yaml:"features,omitempty"`
	Hygiene   HygieneSection `yaml:"hygiene,omitempty"`
	LLM       LLMSection     `yaml:"llm,omitempty"`
	Tor       TorSection     `yaml:"tor,omitempty"`
	Server    ServerSection  `yaml:"server,omitempty"`

	RequestTimeout    string `yaml:"request_timeout,omitempty"`
	ValidationTimeout string `yaml:"validation_timeout,omitempty"`
	Concurrency       int    `yaml:"concurrency,omitempty"`
	MaxSavedReports   int    `yaml:"max_saved_reports,omitempty"`
	DatabaseDir       string `yaml:"database_dir,omitempty"`
	UserAgent         string `yaml:"user_agent,omitempty"`
	IncludeUnverified *bool  `yaml:"include_unverified,omitempty"`
	ValidateURLs      *bool  `yaml:"validate_urls,omitempty"`
	SaveReports       *bool  `yaml:"save_reports,omitempty"`
}

// APIKeys holds provider credentials. Environment variables take precedence.
type APIKeys struct {
	HIBP         string `yaml:"hibp,omitempty"`
	Google       string `yaml:"google,omitempty"`
	GoogleCSEID  string `yaml:"google_cse_id,omitempty"`
	Gemini       string `yaml:"gemini,omitempty"`
	LeakIndexKey string `yaml:"leak_index,omitempty"`
}

// ProviderURLs overrides provider endpoints.
type ProviderURLs struct {
	HIBP      string `yaml:"hibp,omitempty"`
	Search    string `yaml:"search,omitempty"`
	Archive   string `yaml:"archive,omitempty"`
	DarkWeb   string `yaml:"dark_web,omitempty"`
	LeakIndex string `yaml:"leak_index,omitempty"`
	Gemini    string `yaml:"gemini,omitempty"`
	Ollama    string `yaml:"ollama,omitempty"`

	PollAttempts int    `yaml:"poll_attempts,omitempty"`
	PollInterval string `yaml:"poll_interval,omitempty"`
}

// Features toggles whole features on or off. Pointers tell "unset" from "false".
type Features struct {
	EmailMonitoring    *bool `yaml:"email_monitoring,omitempty"`
	UsernameMonitoring *bool `yaml:"username_monitoring,omitempty"`
	PasteSearch        *bool `yaml:"paste_search,omitempty"`
	DarkWebSearch      *bool `yaml:"dark_web_search,omitempty"`
	LeakIndex          *bool `yaml:"leak_index,omitempty"`
	LLMReports         *bool `yaml:"llm_reports,omitempty"`
}

// HygieneSection configures the questionnaire.
type HygieneSection struct {
	Categories   []string `yaml:"categories,omitempty"`
	QuestionBank string   `yaml:"question_bank,omitempty"`
}

// LLMSection configures the recommendation collaborator.
type LLMSection struct {
	Provider      string `yaml:"provider,omitempty"`
	Model         string `yaml:"model,omitempty"`
	FallbackModel string `yaml:"fallback_model,omitempty"`
	Timeout       string `yaml:"timeout,omitempty"`
	CacheDuration string `yaml:"cache_duration,omitempty"`
}

// TorSection configures the Tor transport of the dark-web search.
type TorSection struct {
	Enabled        *bool  `yaml:"enabled,omitempty"`
	ExternalProxy  string `yaml:"external_proxy,omitempty"`
	StartupTimeout string `yaml:"startup_timeout,omitempty"`
}

// ServerSection configures `idguard serve`.
type ServerSection struct {
	Listen string `yaml:"listen,omitempty"`
}

// Apply overlays the values set in f onto cfg.
func (f *File) Apply(cfg *Config) error {
	if f == nil {
		return nil
	}

	setString(&cfg.HIBPAPIKey, f.APIKeys.HIBP)
	setString(&cfg.GoogleAPIKey, f.APIKeys.Google)
	setString(&cfg.GoogleCSEID, f.APIKeys.GoogleCSEID)
	setString(&cfg.GeminiAPIKey, f.APIKeys.Gemini)
	setString(&cfg.LeakBAPIKey, f.APIKeys.LeakIndexKey)

	setString(&cfg.HIBPBaseURL, f.Providers.HIBP)
	setString(&cfg.SearchBaseURL, f.Providers.Search)
	setString(&cfg.ArchiveBaseURL, f.Providers.Archive)
	setString(&cfg.DarkWebBaseURL, f.Providers.DarkWeb)
	setString(&cfg.LeakIndexURL, f.Providers.LeakIndex)
	setString(&cfg.GeminiBaseURL, f.Providers.Gemini)
	setString(&cfg.OllamaBaseURL, f.Providers.Ollama)
	if f.Providers.PollAttempts != 0 {
		cfg.PollAttempts = f.Providers.PollAttempts
	}

	setBool(&cfg.EnableEmailMonitoring, f.Features.EmailMonitoring)
	setBool(&cfg.EnableUsernameMonitoring, f.Features.UsernameMonitoring)
	setBool(&cfg.EnablePasteSearch, f.Features.PasteSearch)
	setBool(&cfg.EnableDarkWebSearch, f.Features.DarkWebSearch)
	setBool(&cfg.EnableLeakIndex, f.Features.LeakIndex)
	setBool(&cfg.EnableLLMReports, f.Features.LLMReports)
	setBool(&cfg.IncludeUnverified, f.IncludeUnverified)
	setBool(&cfg.ValidateURLs, f.ValidateURLs)
	setBool(&cfg.SaveReports, f.SaveReports)

	if len(f.Hygiene.Categories) > 0 {
		cfg.HygieneCategories = f.Hygiene.Categories
	}
	setString(&cfg.QuestionBankPath, f.Hygiene.QuestionBank)

	setString(&cfg.LLMProvider, f.LLM.Provider)
	setString(&cfg.LLMModel, f.LLM.Model)
	setString(&cfg.LLMFallbackModel, f.LLM.FallbackModel)

	setBool(&cfg.UseTor, f.Tor.Enabled)
	if f.Tor.ExternalProxy != "" {
		cfg.UseExternalTor = true
		cfg.TorProxyAddress = f.Tor.ExternalProxy
	}

	setString(&cfg.ListenAddress, f.Server.Listen)
	setString(&cfg.DBDir, f.DatabaseDir)
	setString(&cfg.UserAgent, f.UserAgent)
	if f.Concurrency != 0 {
		cfg.Concurrency = f.Concurrency
	}
	if f.MaxSavedReports != 0 {
		cfg.MaxSavedReports = f.MaxSavedReports
	}

	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"request_timeout", f.RequestTimeout, &cfg.RequestTimeout},
		{"validation_timeout", f.ValidationTimeout, &cfg.ValidationTimeout},
		{"providers.poll_interval", f.Providers.PollInterval, &cfg.PollInterval},
		{"llm.timeout", f.LLM.Timeout, &cfg.LLMTimeout},
		{"llm.cache_duration", f.LLM.CacheDuration, &cfg.CacheDuration},
		{"tor.startup_timeout", f.Tor.StartupTimeout, &cfg.TorStartupTimeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("%w: %s: %q", ErrInvalidDuration, d.name, d.value)
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
