package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default request timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.RequestTimeout != 10*time.Second {
			t.Errorf("expected 10s, got %v", cfg.RequestTimeout)
		}
	})

	t.Run("default validation timeout is 10 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.ValidationTimeout != 10*time.Second {
			t.Errorf("expected 10s, got %v", cfg.ValidationTimeout)
		}
	})

	t.Run("default LLM models", func(t *testing.T) {
		t.Parallel()
		if cfg.LLMProvider != "gemini" {
			t.Errorf("expected gemini, got %q", cfg.LLMProvider)
		}
		if cfg.LLMModel != "gemini-2.0-flash" {
			t.Errorf("unexpected model %q", cfg.LLMModel)
		}
		if cfg.LLMFallbackModel != "gemini-1.5-flash-001" {
			t.Errorf("unexpected fallback model %q", cfg.LLMFallbackModel)
		}
		if cfg.CacheDuration != time.Hour {
			t.Errorf("expected 1h cache, got %v", cfg.CacheDuration)
		}
	})

	t.Run("default hygiene categories", func(t *testing.T) {
		t.Parallel()
		want := []string{"account_security", "data_sharing", "device_security", "social_media", "browsing_habits"}
		if !slices.Equal(cfg.HygieneCategories, want) {
			t.Errorf("got %v, want %v", cfg.HygieneCategories, want)
		}
	})

	t.Run("all features enabled", func(t *testing.T) {
		t.Parallel()
		if !cfg.EnableEmailMonitoring || !cfg.EnableUsernameMonitoring || !cfg.EnablePasteSearch || !cfg.EnableLLMReports {
			t.Error("expected features to be enabled by default")
		}
	})

	t.Run("Tor is off by default", func(t *testing.T) {
		t.Parallel()
		if cfg.UseTor {
			t.Error("expected UseTor to be false")
		}
		if cfg.TorProxyAddress != "127.0.0.1:9050" {
			t.Errorf("unexpected proxy %q", cfg.TorProxyAddress)
		}
	})

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
	})

	t.Run("categories are not shared with the package default", func(t *testing.T) {
		t.Parallel()
		other := NewConfig()
		other.HygieneCategories[0] = "changed"
		if DefaultHygieneCategories[0] != "account_security" {
			t.Error("NewConfig must copy DefaultHygieneCategories")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, ErrInvalidTimeout},
		{"negative validation timeout", func(c *Config) { c.ValidationTimeout = -1 }, ErrInvalidTimeout},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"json and markdown", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
		{"unknown llm provider", func(c *Config) { c.LLMProvider = "gpt" }, ErrUnknownLLMProvider},
		{"no categories", func(c *Config) { c.HygieneCategories = nil }, ErrNoHygieneCategories},
		{"zero max saved reports", func(c *Config) { c.MaxSavedReports = 0 }, ErrInvalidMaxSavedReports},
		{"zero poll attempts", func(c *Config) { c.PollAttempts = 0 }, ErrInvalidPolling},
		{"negative cache duration", func(c *Config) { c.CacheDuration = -time.Second }, ErrInvalidCacheDuration},
		{"ollama provider is valid", func(c *Config) { c.LLMProvider = LLMProviderOllama }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := NewConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestConfigLLMConfigured(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	if cfg.LLMConfigured() {
		t.Error("gemini without key should not be configured")
	}
	cfg.GeminiAPIKey = "k"
	if !cfg.LLMConfigured() {
		t.Error("gemini with key should be configured")
	}

	ollama := NewConfig()
	ollama.LLMProvider = LLMProviderOllama
	ollama.LLMModel = "llama3"
	if !ollama.LLMConfigured() {
		t.Error("ollama with a model should be configured")
	}
}

const sampleYAML = `
api_keys:
  hibp: file-hibp-key
  google: file-google-key
providers:
  hibp: http://127.0.0.1:9999/
  poll_attempts: 3
  poll_interval: 500ms
features:
  paste_search: false
  llm_reports: false
hygiene:
  categories: [account_security, device_security]
llm:
  provider: ollama
  model: llama3
  timeout: 45s
tor:
  enabled: true
  external_proxy: 127.0.0.1:9150
server:
  listen: 0.0.0.0:9000
request_timeout: 15s
max_saved_reports: 20
include_unverified: true
`

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "none.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("api_keys: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("applies every section", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "idguard.yaml")
		if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
			t.Fatal(err)
		}
		f, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("LoadConfigFile() = %v", err)
		}
		cfg := NewConfig()
		if err := f.Apply(cfg); err != nil {
			t.Fatalf("Apply() = %v", err)
		}

		if cfg.HIBPAPIKey != "file-hibp-key" || cfg.GoogleAPIKey != "file-google-key" {
			t.Errorf("api keys not applied: %q %q", cfg.HIBPAPIKey, cfg.GoogleAPIKey)
		}
		if cfg.HIBPBaseURL != "http://127.0.0.1:9999/" {
			t.Errorf("HIBPBaseURL = %q", cfg.HIBPBaseURL)
		}
		if cfg.PollAttempts != 3 || cfg.PollInterval != 500*time.Millisecond {
			t.Errorf("polling = %d / %v", cfg.PollAttempts, cfg.PollInterval)
		}
		if cfg.EnablePasteSearch || cfg.EnableLLMReports {
			t.Error("features should be disabled")
		}
		if !cfg.EnableEmailMonitoring {
			t.Error("unset feature should keep its default")
		}
		if !slices.Equal(cfg.HygieneCategories, []string{"account_security", "device_security"}) {
			t.Errorf("categories = %v", cfg.HygieneCategories)
		}
		if cfg.LLMProvider != "ollama" || cfg.LLMModel != "llama3" || cfg.LLMTimeout != 45*time.Second {
			t.Errorf("llm = %q %q %v", cfg.LLMProvider, cfg.LLMModel, cfg.LLMTimeout)
		}
		if !cfg.UseTor || !cfg.UseExternalTor || cfg.TorProxyAddress != "127.0.0.1:9150" {
			t.Errorf("tor = %v %v %q", cfg.UseTor, cfg.UseExternalTor, cfg.TorProxyAddress)
		}
		if cfg.ListenAddress != "0.0.0.0:9000" {
			t.Errorf("listen = %q", cfg.ListenAddress)
		}
		if cfg.RequestTimeout != 15*time.Second || cfg.MaxSavedReports != 20 || !cfg.IncludeUnverified {
			t.Errorf("general settings not applied: %v %d %v", cfg.RequestTimeout, cfg.MaxSavedReports, cfg.IncludeUnverified)
		}
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Parallel()
		f := &File{RequestTimeout: "ten seconds"}
		err := f.Apply(NewConfig())
		if !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("expected ErrInvalidDuration, got %v", err)
		}
		if !strings.Contains(err.Error(), "request_timeout") {
			t.Errorf("error should name the field: %v", err)
		}
	})
}

func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvHIBPAPIKey:   "env-hibp",
		EnvGeminiAPIKey: "env-gemini",
	}
	cfg := NewConfig()
	cfg.HIBPAPIKey = "file-hibp"
	cfg.GoogleAPIKey = "file-google"
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if cfg.HIBPAPIKey != "env-hibp" {
		t.Errorf("environment should win: %q", cfg.HIBPAPIKey)
	}
	if cfg.GoogleAPIKey != "file-google" {
		t.Errorf("unset variable should keep file value: %q", cfg.GoogleAPIKey)
	}
	if cfg.GeminiAPIKey != "env-gemini" {
		t.Errorf("GeminiAPIKey = %q", cfg.GeminiAPIKey)
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("explicit path that does not exist", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), func(string) string { return "" })
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("explicit path with environment override", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "idguard.yaml")
		if err := os.WriteFile(path, []byte(sampleYAML), 0o600); err != nil {
			t.Fatal(err)
		}
		cfg, err := Load(path, func(k string) string {
			if k == EnvHIBPAPIKey {
				return "env-hibp"
			}
			return ""
		})
		if err != nil {
			t.Fatalf("Load() = %v", err)
		}
		if cfg.ConfigFilePath != path {
			t.Errorf("ConfigFilePath = %q", cfg.ConfigFilePath)
		}
		if cfg.HIBPAPIKey != "env-hibp" {
			t.Errorf("HIBPAPIKey = %q", cfg.HIBPAPIKey)
		}
		if cfg.LLMProvider != "ollama" {
			t.Errorf("file values should be applied: %q", cfg.LLMProvider)
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "c.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "none")); got != "" {
			t.Errorf("FindConfigFile() = %q, want empty", got)
		}
	})
}

func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if filepath.Base(dir) != AppName {
			t.Errorf("%s dir %q should end with %q", name, dir, AppName)
		}
	}
}
