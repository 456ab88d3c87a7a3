package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/idguard/internal/model"
)

// HistorySheet is the worksheet name used by ExportXLSX.
const HistorySheet = "History"

var historyHeader = []any{
	"Report ID", "Timestamp", "Module", "Risk", "Subject", "Score",
	"Total Breaches", "Pastes", "Platforms", "Weaknesses", "Recommendations",
}

// ExportXLSX writes the summaries of reports as a spreadsheet, one row per report.
func ExportXLSX(w io.Writer, reports []model.Report) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook

	if err := f.SetSheetName("Sheet1", HistorySheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(HistorySheet, "A1", &historyHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(historyHeader))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(HistorySheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range reports {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := historyRow(r)
		if err := f.SetSheetRow(HistorySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write report %d: %w", r.ID, err)
		}
	}

	if err := f.SetColWidth(HistorySheet, "B", "B", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(HistorySheet, "E", "E", 30); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func historyRow(r model.Report) []any {
	s := r.Summary
	score := ""
	if s.Score != nil {
		score = strconv.Itoa(*s.Score)
	}
	return []any{
		r.ID,
		r.Timestamp.UTC().Format("2006-01-02 15:04:05"),
		string(r.ModuleType),
		s.Risk.String(),
		s.Subject,
		score,
		s.TotalBreaches,
		s.PasteCount,
		s.PlatformCount,
		s.WeaknessCount,
		s.RecommendationCount,
	}
}
