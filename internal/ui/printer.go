package ui

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/nao1215/idguard/internal/model"
)

// StartSpinner shows a spinner on stderr so that reports written to stdout
// stay clean. Stop it with Success, Fail or Stop.
func StartSpinner(text string) *pterm.SpinnerPrinter {
	spinner, _ := pterm.DefaultSpinner.WithWriter(os.Stderr).Start(text) //nolint:errcheck // a spinner that fails to start is only cosmetic
	return spinner
}

// PrintSaveResult tells the user whether a report was saved.
func PrintSaveResult(id int64, err error) {
	switch {
	case err != nil:
		pterm.Warning.WithWriter(os.Stderr).Printf("Report not saved: %v\n", err)
	case id != 0:
		pterm.Success.WithWriter(os.Stderr).Printf("Report saved as #%d (idguard history show %d)\n", id, id)
	}
}

// RiskText colors a risk level for the terminal.
func RiskText(r model.RiskLevel) string {
	switch r {
	case model.RiskHigh:
		return pterm.FgRed.Sprint("HIGH")
	case model.RiskMedium:
		return pterm.FgYellow.Sprint("MEDIUM")
	default:
		return pterm.FgGreen.Sprint("LOW")
	}
}

// HistoryRows builds the table rows, header first, for a history listing.
func HistoryRows(reports []model.Report) [][]string {
	data := [][]string{
		{"ID", "Date", "Type", "Subject", "Risk", "Details"},
	}
	for _, r := range reports {
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp.Local().Format("2006-01-02 15:04"),
			string(r.ModuleType),
			subject(r),
			RiskText(r.Summary.Risk),
			details(r),
		})
	}
	return data
}

// PrintHistory writes reports as a table to w.
func PrintHistory(w io.Writer, reports []model.Report, total int) error {
	if len(reports) == 0 {
		_, err := fmt.Fprintln(w, "No saved reports.")
		return err
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(HistoryRows(reports)).Srender()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, table); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "Showing %d of %d report(s)\n", len(reports), total)
	return err
}

func subject(r model.Report) string {
	if r.Summary.Subject != "" {
		return r.Summary.Subject
	}
	return "-"
}

func details(r model.Report) string {
	s := r.Summary
	if r.ModuleType == model.ModuleHygiene {
		score := 0
		if s.Score != nil {
			score = *s.Score
		}
		return fmt.Sprintf("score %d/100, %d weakness(es), %d recommendation(s)",
			score, s.WeaknessCount, s.RecommendationCount)
	}
	return fmt.Sprintf("%d breach(es), %d paste(s), %d platform(s)",
		s.TotalBreaches, s.PasteCount, s.PlatformCount)
}
