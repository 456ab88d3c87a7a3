package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nao1215/idguard/internal/report"
	"github.com/nao1215/idguard/internal/ui"
)

// outputFormat is the report format selected by --json/--markdown.
type outputFormat int

const (
	formatSimple outputFormat = iota
	formatJSON
	formatMarkdown
)

// addOutputFlags registers the report format and destination flags.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("json", "j", false, "Output report in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output report in Markdown format")
	cmd.Flags().StringP("output", "o", "", "Write report to file instead of stdout")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")
}

// outputSettings reads the flags registered by addOutputFlags, falling back
// to the configured defaults.
func outputSettings(cmd *cobra.Command, jsonDefault, markdownDefault bool, fileDefault string) (outputFormat, string) {
	asJSON, _ := cmd.Flags().GetBool("json")         //nolint:errcheck // flag registered by addOutputFlags
	asMarkdown, _ := cmd.Flags().GetBool("markdown") //nolint:errcheck // flag registered by addOutputFlags
	file, _ := cmd.Flags().GetString("output")       //nolint:errcheck // flag registered by addOutputFlags

	if !cmd.Flags().Changed("json") && !cmd.Flags().Changed("markdown") {
		asJSON, asMarkdown = jsonDefault, markdownDefault
	}
	if file == "" {
		file = fileDefault
	}

	switch {
	case asJSON:
		return formatJSON, file
	case asMarkdown:
		return formatMarkdown, file
	default:
		return formatSimple, file
	}
}

// newWriter creates the report writer for the chosen format.
func newWriter(w io.Writer, format outputFormat, verbose bool) report.Writer {
	switch format {
	case formatJSON:
		return report.NewJSONWriter(w, report.WithPrettyPrint())
	case formatMarkdown:
		return report.NewMarkdownWriter(w)
	default:
		return report.NewSimpleWriter(w,
			report.WithVerbose(verbose),
			report.WithMaskedEmail(true),
		)
	}
}

// withOutput runs write against stdout or, when path is set, a newly created
// file that only the current user can read.
func withOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	// Reports may contain breach details, so restrict permissions.
	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := write(f); err != nil {
		_ = f.Close() //nolint:errcheck // write error takes precedence
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	pterm.Success.WithWriter(os.Stderr).Printf("Report written to %s\n", path)
	return nil
}

func startSpinner(text string) *pterm.SpinnerPrinter {
	return ui.StartSpinner(text)
}

func stopSpinner(spinner *pterm.SpinnerPrinter, ok bool, msg string) {
	if spinner == nil {
		return
	}
	if ok {
		spinner.Success(msg)
		return
	}
	spinner.Fail(msg)
}
