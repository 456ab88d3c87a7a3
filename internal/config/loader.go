package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file name searched in the working
// and home directories.
const DefaultConfigFile = ".idguard.yaml"

// XDGConfigFile is the configuration file name inside XDGConfigDir.
const XDGConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// Environment variables that override credentials from the config file.
const (
	EnvHIBPAPIKey   = "HIBP_API_KEY"
	EnvGoogleAPIKey = "GOOGLE_API_KEY"
	EnvGoogleCSEID  = "GOOGLE_CSE_ID"
	EnvGeminiAPIKey = "GEMINI_API_KEY"
	EnvLeakBAPIKey  = "LEAKB_API_KEY"
)

// LoadConfigFile reads a YAML configuration file.
// A missing file yields ErrConfigNotFound so callers can decide whether that
// matters (it does when the path came from --config).
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// FindConfigFile returns the configuration file to use, or "" if none exists:
//  1. configPath, if given
//  2. .idguard.yaml in the current directory
//  3. .idguard.yaml in the home directory
//  4. config.yaml in XDGConfigDir
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), XDGConfigFile))

	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// ApplyEnv overrides credentials with the values of the environment variables
// above. getenv is os.Getenv outside of tests.
func (c *Config) ApplyEnv(getenv func(string) string) {
	setString(&c.HIBPAPIKey, getenv(EnvHIBPAPIKey))
	setString(&c.GoogleAPIKey, getenv(EnvGoogleAPIKey))
	setString(&c.GoogleCSEID, getenv(EnvGoogleCSEID))
	setString(&c.GeminiAPIKey, getenv(EnvGeminiAPIKey))
	setString(&c.LeakBAPIKey, getenv(EnvLeakBAPIKey))
}

// Load builds a Config from the defaults, the discovered config file and the
// environment. It fails when an explicitly requested file is missing.
func Load(configPath string, getenv func(string) string) (*Config, error) {
	cfg := NewConfig()
	cfg.ConfigFilePath = configPath

	path := FindConfigFile(configPath)
	if path == "" && configPath != "" {
		return nil, ErrConfigNotFound
	}
	if path != "" {
		f, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := f.Apply(cfg); err != nil {
			return nil, err
		}
		cfg.ConfigFilePath = path
	}

	cfg.ApplyEnv(getenv)
	return cfg, nil
}
