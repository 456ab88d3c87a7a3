package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/report"
	"github.com/nao1215/idguard/internal/ui"
)

// exportPageSize is how many reports export reads from the store at a time.
const exportPageSize = 100

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, show, export and prune saved reports",
		Long: `Work with the reports saved by "idguard check" and "idguard hygiene".

Reports are kept in a local SQLite database under the XDG data directory
(~/.local/share/idguard by default, see database_dir in the config file).`,
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryExportCmd())
	cmd.AddCommand(newHistoryPruneCmd())

	return cmd
}

func newHistoryListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, newest first",
		Example: `  idguard history list
  idguard history list --type hygiene --limit 10 --page 2`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moduleType, err := moduleTypeFlag(cmd)
			if err != nil {
				return err
			}
			page, _ := cmd.Flags().GetInt("page") //nolint:errcheck // flag registered below
			if page < 1 {
				return fmt.Errorf("--page must be at least 1, got %d", page)
			}

			a, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			limit, _ := cmd.Flags().GetInt("limit") //nolint:errcheck // flag registered below
			if !cmd.Flags().Changed("limit") {
				limit = a.cfg.MaxSavedReports
			}
			if limit < 1 {
				return fmt.Errorf("--limit must be at least 1, got %d", limit)
			}

			result, err := a.service.History(cmd.Context(), moduleType, page, limit)
			if err != nil {
				return err
			}
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON { //nolint:errcheck // flag registered below
				_, err := report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint()).WriteValue(result)
				return err
			}
			return ui.PrintHistory(cmd.OutOrStdout(), result.Reports, result.Total)
		},
	}

	addTypeFlag(cmd)
	cmd.Flags().IntP("limit", "n", 0, "Reports per page (default: max_saved_reports from the config)")
	cmd.Flags().IntP("page", "p", 1, "Page number")
	cmd.Flags().BoolP("json", "j", false, "Output the listing in JSON format")

	return cmd
}

func newHistoryShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved report",
		Example: `  idguard history show 12
  idguard history show 12 --markdown -o report.md`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid report id %q", args[0])
			}

			a, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer a.close()
			format, file := outputSettings(cmd, a.cfg.JSONReport, a.cfg.MarkdownReport, "")

			r, err := a.service.Report(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("report %d: %w", id, err)
			}
			return withOutput(cmd.OutOrStdout(), file, func(w io.Writer) error {
				_, err := report.Render(newWriter(w, format, a.cfg.Verbose), r)
				return err
			})
		},
	}

	addOutputFlags(cmd)
	return cmd
}

func newHistoryExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export report summaries to an Excel workbook",
		Example: `  idguard history export --xlsx history.xlsx
  idguard history export --type exposure --xlsx exposure.xlsx`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moduleType, err := moduleTypeFlag(cmd)
			if err != nil {
				return err
			}
			path, _ := cmd.Flags().GetString("xlsx") //nolint:errcheck // flag registered below

			a, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			var reports []model.Report
			for page := 1; ; page++ {
				result, err := a.service.History(cmd.Context(), moduleType, page, exportPageSize)
				if err != nil {
					return err
				}
				reports = append(reports, result.Reports...)
				if len(result.Reports) < exportPageSize || len(reports) >= result.Total {
					break
				}
			}

			return withOutput(cmd.OutOrStdout(), path, func(w io.Writer) error {
				return report.ExportXLSX(w, reports)
			})
		},
	}

	addTypeFlag(cmd)
	cmd.Flags().StringP("xlsx", "x", "", "Workbook to write (required)")
	_ = cmd.MarkFlagRequired("xlsx") //nolint:errcheck // flag registered above

	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest saved reports",
		Example: `  idguard history prune --keep 20
  idguard history prune --type exposure --keep 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			moduleType, err := moduleTypeFlag(cmd)
			if err != nil {
				return err
			}
			keep, _ := cmd.Flags().GetInt("keep") //nolint:errcheck // flag registered below
			if keep < 0 {
				return fmt.Errorf("--keep must not be negative, got %d", keep)
			}

			a, err := openHistory(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			n, err := a.service.Prune(cmd.Context(), moduleType, keep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d report(s)\n", n)
			return nil
		},
	}

	addTypeFlag(cmd)
	cmd.Flags().IntP("keep", "k", 50, "Number of newest reports to keep")

	return cmd
}

// openHistory builds an app whose report store must be available.
func openHistory(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newApp(cmd.Context(), cfg, appOptions{requireStore: true})
}

func addTypeFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("type", "t", "", "Only reports of this type (exposure or hygiene)")
}

func moduleTypeFlag(cmd *cobra.Command) (model.ModuleType, error) {
	t, _ := cmd.Flags().GetString("type") //nolint:errcheck // flag registered by addTypeFlag
	if t == "" {
		return "", nil
	}
	return model.ParseModuleType(t)
}
