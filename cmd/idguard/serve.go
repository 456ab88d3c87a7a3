package main

import (
	"os"
	"time"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/idguard/internal/config"
	"github.com/nao1215/idguard/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the checks over an HTTP JSON API",
		Long: `Serve exposure checks, the hygiene questionnaire and the report
history over HTTP.

Routes:
  GET  /healthz
  POST /api/v1/exposure        {"email": "...", "query": "..."}
  GET  /api/v1/questionnaire
  POST /api/v1/hygiene         {"answers": {"pass_reuse": 3}}
  GET  /api/v1/reports?type=&page=&limit=
  GET  /api/v1/reports/{id}

The server listens on 127.0.0.1:8080 by default. It has no authentication;
do not expose it beyond the local machine.`,
		Example: `  idguard serve
  idguard serve --listen 127.0.0.1:9000`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringP("listen", "L", "", "Address to listen on (default: server.listen from the config)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if listen, _ := cmd.Flags().GetString("listen"); listen != "" { //nolint:errcheck // flag registered above
		cfg.ListenAddress = listen
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{tor: true, jsonLogs: true})
	if err != nil {
		return err
	}
	defer a.close()

	srv := server.New(a.service,
		server.WithPageSize(cfg.MaxSavedReports),
		server.WithCheckTimeout(checkTimeout(cfg)),
		server.WithLogger(a.logger),
	)
	cmd.PrintErrf("Listening on http://%s\n", cfg.ListenAddress)
	return srv.ListenAndServe(ctx, cfg.ListenAddress)
}

// checkTimeout bounds one API request: the provider calls, the leak index
// polling, URL validation and the LLM call.
func checkTimeout(cfg *config.Config) time.Duration {
	polling := time.Duration(cfg.PollAttempts) * (cfg.PollInterval + cfg.RequestTimeout)
	return 2*cfg.RequestTimeout + polling + cfg.ValidationTimeout + cfg.LLMTimeout
}
