package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/idguard/internal/config"
	"github.com/nao1215/idguard/internal/database"
	"github.com/nao1215/idguard/internal/exposure"
	"github.com/nao1215/idguard/internal/hygiene"
	"github.com/nao1215/idguard/internal/llm"
	idlog "github.com/nao1215/idguard/internal/log"
	"github.com/nao1215/idguard/internal/provider"
	"github.com/nao1215/idguard/internal/recommend"
	"github.com/nao1215/idguard/internal/service"
	"github.com/nao1215/idguard/internal/tor"
	"github.com/nao1215/idguard/internal/validator"
)

// app holds everything a command needs, built from the configuration.
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	service *service.Service

	db      *database.ReportDB
	session *tor.Session
}

// appOptions selects the parts of the app a command actually needs.
type appOptions struct {
	// tor opens the Tor session for the dark-web search when it is enabled.
	// Commands that never run an exposure check leave it off.
	tor bool
	// requireStore fails when the report store cannot be opened.
	requireStore bool
	// jsonLogs writes logs as JSON lines, for the long-running server.
	jsonLogs bool
}

// loadConfig reads the configuration selected by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path, os.Getenv)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose { //nolint:errcheck // persistent flag always exists
		cfg.Verbose = true
	}
	return cfg, nil
}

// setupLogger creates the secure logger used by every command.
// Logs go to stderr so that reports on stdout stay machine readable.
func setupLogger(verbose, asJSON bool) *slog.Logger {
	logger := idlog.NewSecureLogger(os.Stderr, verbose)
	if asJSON {
		logger = idlog.NewSecureJSONLogger(os.Stderr, verbose)
	}
	slog.SetDefault(logger)
	return logger
}

// newApp wires the configured providers, scorer, advisor and store.
func newApp(ctx context.Context, cfg *config.Config, opts appOptions) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	a := &app{cfg: cfg, logger: setupLogger(cfg.Verbose, opts.jsonLogs)}

	bank, err := loadBank(cfg)
	if err != nil {
		return nil, err
	}
	scorer := hygiene.NewScorer(bank, hygiene.WithLogger(a.logger))

	advisor := llm.NewDefaultAdvisor(llm.Settings{
		Enabled:       cfg.EnableLLMReports,
		Provider:      cfg.LLMProvider,
		GeminiBaseURL: cfg.GeminiBaseURL,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		Model:         cfg.LLMModel,
		FallbackModel: cfg.LLMFallbackModel,
		OllamaBaseURL: cfg.OllamaBaseURL,
		Categories:    cfg.HygieneCategories,
		Timeout:       cfg.LLMTimeout,
		CacheTTL:      cfg.CacheDuration,
		UserAgent:     cfg.UserAgent,
		Logger:        a.logger,
	})
	if cfg.EnableLLMReports && !advisor.Available() {
		a.logger.Debug("LLM recommendations disabled", "provider", cfg.LLMProvider)
	}
	recommender := recommend.New(recommend.WithAdvisor(advisor), recommend.WithLogger(a.logger))

	checker, err := a.newAggregator(ctx, opts.tor)
	if err != nil {
		return nil, err
	}

	svcOpts := []service.Option{
		service.WithBatchConcurrency(cfg.Concurrency),
		service.WithLogger(a.logger),
	}
	if cfg.SaveReports || opts.requireStore {
		db, err := database.Open(cfg.DBDir, database.DefaultOptions())
		switch {
		case err == nil:
			a.db = db
			svcOpts = append(svcOpts, service.WithStore(db))
		case opts.requireStore:
			a.close()
			return nil, fmt.Errorf("failed to open report store: %w", err)
		default:
			a.logger.Warn("report store unavailable, reports will not be saved", "error", err)
		}
	}

	a.service = service.New(checker, scorer, recommender, svcOpts...)
	return a, nil
}

func loadBank(cfg *config.Config) (*hygiene.Bank, error) {
	if cfg.QuestionBankPath != "" {
		bank, err := hygiene.LoadBankFile(cfg.QuestionBankPath, cfg.HygieneCategories)
		if err != nil {
			return nil, fmt.Errorf("failed to load question bank: %w", err)
		}
		return bank, nil
	}
	return hygiene.DefaultBank(cfg.HygieneCategories)
}

func (a *app) newAggregator(ctx context.Context, withTor bool) (*exposure.Aggregator, error) {
	cfg := a.cfg

	settings := provider.Settings{
		HIBPAPIKey:        cfg.HIBPAPIKey,
		GoogleAPIKey:      cfg.GoogleAPIKey,
		GoogleCSEID:       cfg.GoogleCSEID,
		LeakBAPIKey:       cfg.LeakBAPIKey,
		HIBPBaseURL:       cfg.HIBPBaseURL,
		SearchBaseURL:     cfg.SearchBaseURL,
		ArchiveBaseURL:    cfg.ArchiveBaseURL,
		DarkWebBaseURL:    cfg.DarkWebBaseURL,
		LeakIndexURL:      cfg.LeakIndexURL,
		EnableBreaches:    cfg.EnableEmailMonitoring,
		EnableSearch:      cfg.EnableUsernameMonitoring,
		EnablePasteSearch: cfg.EnablePasteSearch,
		EnableDarkWeb:     cfg.EnableDarkWebSearch,
		EnableLeakIndex:   cfg.EnableLeakIndex,
		RequestTimeout:    cfg.RequestTimeout,
		UserAgent:         cfg.UserAgent,
		PollAttempts:      cfg.PollAttempts,
		PollInterval:      cfg.PollInterval,
		Logger:            a.logger,
	}

	if withTor && cfg.UseTor && cfg.EnableDarkWebSearch {
		spinner := startSpinner("Connecting to Tor...")
		session, err := tor.Connect(ctx, tor.Settings{
			External:       cfg.UseExternalTor,
			ProxyAddress:   cfg.TorProxyAddress,
			StartupTimeout: cfg.TorStartupTimeout,
			RequestTimeout: cfg.RequestTimeout,
		}, a.logger)
		if err != nil {
			stopSpinner(spinner, false, "Tor is not available")
			return nil, fmt.Errorf("failed to connect to Tor: %w", err)
		}
		stopSpinner(spinner, true, "Connected to Tor")
		a.session = session
		settings.DarkWebClient = session.HTTPClient()
	}

	opts := []exposure.Option{
		exposure.WithIncludeUnverified(cfg.IncludeUnverified),
		exposure.WithConcurrency(cfg.Concurrency),
		exposure.WithLogger(a.logger),
	}
	if cfg.ValidateURLs {
		prober := validator.NewHTTPProber(
			validator.WithProbeTimeout(cfg.ValidationTimeout),
			validator.WithProbeUserAgent(cfg.UserAgent),
		)
		opts = append(opts, exposure.WithValidator(validator.New(prober,
			validator.WithConcurrency(cfg.Concurrency),
			validator.WithLogger(a.logger),
		)))
	}
	return exposure.New(provider.NewDefaultRegistry(settings), opts...), nil
}

// close releases the store and the Tor session.
func (a *app) close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("failed to close report store", "error", err)
		}
	}
	if a.session != nil {
		if err := a.session.Close(); err != nil {
			a.logger.Warn("failed to stop Tor", "error", err)
		}
	}
}
