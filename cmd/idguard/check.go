package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/report"
	"github.com/nao1215/idguard/internal/service"
	"github.com/nao1215/idguard/internal/ui"
)

// errNoTarget is returned when check is run without anything to look up.
var errNoTarget = errors.New("nothing to check: use --email, --query or --list")

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check an e-mail address or username for exposure",
		Long: `Check where an e-mail address or a username/full name appears.

The e-mail address is looked up in breach databases, paste archives, the
dark web and leak indexes. The query is classified as a username or a full
name and searched on social platforms and paste sites. Found URLs are
verified before they are reported unless validation is disabled.

The result is rated low, medium or high and saved to the report history.`,
		Example: `  # Check an e-mail address
  idguard check --email you@example.com

  # Check an e-mail address and a username together
  idguard check -e you@example.com -q yourhandle

  # Check every line of a file (e-mail addresses and usernames)
  idguard check --list targets.txt

  # Write a Markdown report to a file
  idguard check -e you@example.com --markdown -o report.md`,
		RunE: runCheck,
	}

	cmd.Flags().StringP("email", "e", "", "E-mail address to check")
	cmd.Flags().StringP("query", "q", "", "Username or full name to check")
	cmd.Flags().StringP("list", "l", "", "File with one e-mail address or username per line")
	addOutputFlags(cmd)

	return cmd
}

func runCheck(cmd *cobra.Command, _ []string) error {
	email, _ := cmd.Flags().GetString("email") //nolint:errcheck // flag registered above
	query, _ := cmd.Flags().GetString("query") //nolint:errcheck // flag registered above
	list, _ := cmd.Flags().GetString("list")   //nolint:errcheck // flag registered above

	if email == "" && query == "" && list == "" {
		return errNoTarget
	}

	var targets []service.Target
	if list != "" {
		var err error
		if targets, err = readTargets(list); err != nil {
			return err
		}
		if len(targets) == 0 {
			return fmt.Errorf("no targets found in %s", list)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, file := outputSettings(cmd, cfg.JSONReport, cfg.MarkdownReport, cfg.ReportFile)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, appOptions{tor: true})
	if err != nil {
		return err
	}
	defer a.close()

	if len(targets) > 0 {
		return runBatchCheck(ctx, cmd, a, targets, format, file)
	}

	spinner := startSpinner("Checking exposure...")
	out, err := a.service.CheckExposure(ctx, email, query)
	if err != nil {
		stopSpinner(spinner, false, "Check failed")
		return err
	}
	stopSpinner(spinner, true, fmt.Sprintf("Check complete (risk: %s)", out.Report.CombinedRisk))

	if err := withOutput(cmd.OutOrStdout(), file, func(w io.Writer) error {
		_, err := newWriter(w, format, cfg.Verbose).WriteExposure(out.Report)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	ui.PrintSaveResult(out.ReportID, out.SaveErr)
	return nil
}

func readTargets(path string) ([]service.Target, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open target list: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	return service.ParseTargets(f)
}

// runBatchCheck checks all targets and writes every report, in list order,
// to the chosen output.
func runBatchCheck(
	ctx context.Context,
	cmd *cobra.Command,
	a *app,
	targets []service.Target,
	format outputFormat,
	file string,
) error {
	var done atomic.Int32
	spinner := startSpinner(fmt.Sprintf("Checking %d target(s)...", len(targets)))

	results, err := a.service.CheckBatch(ctx, targets, func(_ int, _ *service.Outcome[*model.CombinedReport]) {
		n := done.Add(1)
		if spinner != nil {
			spinner.UpdateText(fmt.Sprintf("Checked %d/%d target(s)...", n, len(targets)))
		}
	})
	if err != nil {
		stopSpinner(spinner, false, "Batch check interrupted")
		return err
	}
	stopSpinner(spinner, true, fmt.Sprintf("Checked %d target(s)", done.Load()))

	werr := withOutput(cmd.OutOrStdout(), file, func(w io.Writer) error {
		writer := newWriter(w, format, a.cfg.Verbose)
		if format == formatJSON {
			// A single JSON array keeps the output parseable.
			reports := make([]*model.CombinedReport, 0, len(results))
			for _, out := range results {
				if out != nil {
					reports = append(reports, out.Report)
				}
			}
			_, err := report.NewJSONWriter(w, report.WithPrettyPrint()).WriteValue(reports)
			return err
		}
		for _, out := range results {
			if out == nil {
				continue
			}
			if _, err := writer.WriteExposure(out.Report); err != nil {
				return err
			}
		}
		return nil
	})
	if werr != nil {
		return fmt.Errorf("failed to write report: %w", werr)
	}

	for i, out := range results {
		if out == nil {
			cmd.PrintErrf("Skipped %s: invalid target\n", targets[i])
			continue
		}
		ui.PrintSaveResult(out.ReportID, out.SaveErr)
	}
	return nil
}
