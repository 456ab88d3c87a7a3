// Package report renders and packages finished checks.
//
// Writers produce the user-facing output:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter: structured JSON for tool integration
//   - MarkdownWriter: Markdown with tables, alerts and a mermaid pie chart
//
// AssembleExposure and AssembleHygiene map a result onto the persisted
// model.Report shape, and DecodeExposure and DecodeHygiene read the full
// report back. ExportXLSX writes a report history as a spreadsheet.
package report
