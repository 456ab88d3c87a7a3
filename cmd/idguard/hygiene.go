package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nao1215/idguard/internal/hygiene"
	"github.com/nao1215/idguard/internal/ui"
)

// NewHygieneCmd creates the hygiene command.
func NewHygieneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hygiene",
		Short: "Run the digital hygiene questionnaire",
		Long: `Run the digital hygiene questionnaire and get a score, a risk level
and a prioritized action plan.

Without --answers the questions are asked interactively. With --answers the
answers are read from a JSON object mapping question ids to option values,
for example {"pass_reuse": 3, "mfa_usage": "4"}.

When an LLM is configured its advice is merged into the recommendations.`,
		Example: `  # Answer interactively
  idguard hygiene

  # Score answers from a file and print JSON
  idguard hygiene --answers answers.json --json`,
		RunE: runHygiene,
	}

	cmd.Flags().StringP("answers", "a", "", "JSON file with answers instead of asking interactively")
	addOutputFlags(cmd)

	return cmd
}

func runHygiene(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, file := outputSettings(cmd, cfg.JSONReport, cfg.MarkdownReport, cfg.ReportFile)

	a, err := newApp(cmd.Context(), cfg, appOptions{})
	if err != nil {
		return err
	}
	defer a.close()

	answersFile, _ := cmd.Flags().GetString("answers") //nolint:errcheck // flag registered above

	var answers map[string]int
	if answersFile != "" {
		answers, err = readAnswers(answersFile)
	} else {
		answers, err = ui.AskQuestionnaire(ui.PTermAsker{}, a.service.Questionnaire())
	}
	if err != nil {
		return err
	}

	spinner := startSpinner("Building recommendations...")
	out, err := a.service.AssessHygiene(cmd.Context(), answers)
	if err != nil {
		stopSpinner(spinner, false, "Assessment failed")
		return err
	}
	stopSpinner(spinner, true, fmt.Sprintf("Assessment complete (score: %d/100)", out.Report.OverallScore))

	if err := withOutput(cmd.OutOrStdout(), file, func(w io.Writer) error {
		_, err := newWriter(w, format, cfg.Verbose).WriteHygiene(out.Report)
		return err
	}); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	ui.PrintSaveResult(out.ReportID, out.SaveErr)
	return nil
}

// readAnswers loads answers from a JSON object. Values may be numbers or
// numeric strings. Non-integer numbers are reported and skipped.
func readAnswers(path string) (map[string]int, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}

	var raw map[string]json.Number
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse answers: %w", err)
	}

	form := make(map[string]string, len(raw))
	for k, v := range raw {
		form[k] = v.String()
	}
	answers, skipped := hygiene.ParseAnswers(form)
	if len(skipped) > 0 {
		pterm.Warning.WithWriter(os.Stderr).Printf("Ignored answers: %s\n", strings.Join(skipped, ", "))
	}
	return answers, nil
}
