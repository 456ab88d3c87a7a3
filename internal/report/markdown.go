package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/idguard/internal/hygiene"
	idlog "github.com/nao1215/idguard/internal/log"
	"github.com/nao1215/idguard/internal/model"
)

// MarkdownWriter outputs reports in Markdown format, for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// WriteExposure outputs an exposure check in Markdown format.
// The e-mail address is always masked, since Markdown reports get shared.
func (w *MarkdownWriter) WriteExposure(report *model.CombinedReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Identity Exposure Report")
	md.PlainText("")

	rows := [][]string{}
	if report.Email != "" {
		rows = append(rows, []string{"E-mail", "`" + idlog.MaskEmail(report.Email) + "`"})
	}
	if report.Query != "" {
		rows = append(rows, []string{"Query", "`" + report.Query + "`"})
	}
	rows = append(rows,
		[]string{"Checked", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
		[]string{"Overall risk", riskBadge(report.CombinedRisk)},
		[]string{"Total breaches", strconv.Itoa(report.TotalBreaches())},
		[]string{"Pastes", strconv.Itoa(report.PasteCount)},
		[]string{"Platforms", strconv.Itoa(report.PlatformCount())},
	)
	md.Table(markdown.TableSet{Header: []string{"Property", "Value"}, Rows: rows})
	md.PlainText("")

	w.writeExposureAlert(md, report)
	w.writeSourceChart(md, report)

	if r := report.EmailResult; r != nil {
		w.writeEmailResult(md, r)
	}
	if r := report.QueryResult; r != nil {
		w.writeQueryResult(md, r)
	}
	if n := report.Narrative; n != nil {
		if len(n.Findings) > 0 {
			md.H2("What We Found")
			md.PlainText("")
			md.BulletList(n.Findings...)
			md.PlainText("")
		}
		if len(n.Recommendations) > 0 {
			md.H2("Recommendations")
			md.PlainText("")
			md.BulletList(n.Recommendations...)
			md.PlainText("")
		}
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeExposureAlert(md *markdown.Markdown, report *model.CombinedReport) {
	switch report.CombinedRisk {
	case model.RiskHigh:
		md.Cautionf("High exposure: %d breach(es) and %d paste(s) found. Act on the recommendations now.",
			report.TotalBreaches(), report.PasteCount)
	case model.RiskMedium:
		md.Warningf("Moderate exposure: %d breach(es) and %d paste(s) found.",
			report.TotalBreaches(), report.PasteCount)
	default:
		md.Tip("No significant exposure found.")
	}
	md.PlainText("")
}

// writeSourceChart writes a mermaid pie chart of where the findings came from.
func (w *MarkdownWriter) writeSourceChart(md *markdown.Markdown, report *model.CombinedReport) {
	counts := map[string]int{}
	for _, r := range report.Results() {
		if !r.IsSuccess() {
			continue
		}
		counts["Breaches"] += len(r.Breaches)
		counts["Pastes"] += len(r.Pastes)
		counts["Leaks"] += len(r.Leaks)
		counts["Platforms"] += len(r.FoundOn)
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Findings by Source"),
		piechart.WithShowData(true),
	)
	total := 0
	for _, label := range []string{"Breaches", "Pastes", "Leaks", "Platforms"} {
		if n := counts[label]; n > 0 {
			chart.LabelAndIntValue(label, uint64(n)) //nolint:gosec // n is a positive count
			total += n
		}
	}
	if total == 0 {
		return
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeEmailResult(md *markdown.Markdown, r *model.ExposureResult) {
	md.H2("E-mail Exposure")
	md.PlainText("")
	if !r.IsSuccess() {
		md.Note("Not checked: " + r.Message)
		md.PlainText("")
		return
	}

	if len(r.Breaches) == 0 {
		md.PlainText("No breaches found.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(r.Breaches))
		for i, b := range r.Breaches {
			rows[i] = []string{
				b.DisplayName(),
				dash(b.BreachDate),
				truncateString(strings.Join(b.DataClasses, ", "), 60),
				strconv.FormatInt(b.PwnCount, 10),
			}
		}
		md.Table(markdown.TableSet{Header: []string{"Breach", "Date", "Data", "Accounts"}, Rows: rows})
		md.PlainText("")
	}

	w.writeFindingsTable(md, "Pastes", r.Pastes)
	w.writeFindingsTable(md, "Leaks", r.Leaks)
	w.writeProviderErrors(md, r)
}

func (w *MarkdownWriter) writeQueryResult(md *markdown.Markdown, r *model.ExposureResult) {
	md.H2("Username Exposure")
	md.PlainText("")
	if !r.IsSuccess() {
		md.Note("Not checked: " + r.Message)
		md.PlainText("")
		return
	}

	if len(r.FoundOn) == 0 {
		md.PlainText("No platform mentions found.")
		md.PlainText("")
	} else {
		rows := make([][]string, len(r.FoundOn))
		for i, m := range r.FoundOn {
			rows[i] = []string{m.Platform, m.URL, truncateString(dash(m.Title), 50)}
		}
		md.Table(markdown.TableSet{Header: []string{"Platform", "URL", "Title"}, Rows: rows})
		md.PlainText("")
		md.Note(model.UnconfirmedMentionNote + ".")
		md.PlainText("")
	}

	w.writeFindingsTable(md, "Pastes", r.Pastes)
	w.writeProviderErrors(md, r)
}

func (w *MarkdownWriter) writeFindingsTable(md *markdown.Markdown, title string, findings []model.Finding) {
	if len(findings) == 0 {
		return
	}
	md.PlainText("### " + title)
	md.PlainText("")

	rows := make([][]string, len(findings))
	for i, f := range findings {
		location := f.URL
		if location == "" {
			location = f.Reference
		}
		sensitive := "-"
		if f.ContainsSensitive {
			sensitive = "⚠️ yes"
		}
		rows[i] = []string{
			truncateString(f.Title, 50),
			truncateString(dash(location), 60),
			dash(f.Date),
			sensitive,
		}
	}
	md.Table(markdown.TableSet{Header: []string{"Title", "Location", "Date", "Sensitive"}, Rows: rows})
	md.PlainText("")

	for _, f := range findings {
		if f.Excerpt != "" {
			md.Details(f.Title, f.Excerpt)
		}
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeProviderErrors(md *markdown.Markdown, r *model.ExposureResult) {
	if len(r.ProviderErrors) == 0 {
		return
	}
	items := make([]string, 0, len(r.ProviderErrors))
	for _, name := range sortedKeys(r.ProviderErrors) {
		items = append(items, name+": "+r.ProviderErrors[name])
	}
	md.Details("Providers without results", strings.Join(items, "\n"))
	md.PlainText("")
}

// WriteHygiene outputs a hygiene assessment in Markdown format.
func (w *MarkdownWriter) WriteHygiene(report *model.HygieneReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Digital Hygiene Report")
	md.PlainText("")
	advice := "rule-based"
	if report.AIAugmented {
		advice = "rule-based and AI-generated"
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Assessed", report.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Overall score", "**" + strconv.Itoa(report.OverallScore) + "/100**"},
			{"Risk level", riskBadge(report.RiskLevel)},
			{"Advice", advice},
		},
	})
	md.PlainText("")

	switch report.RiskLevel {
	case model.RiskHigh:
		md.Cautionf("%s", report.RiskLevelDescription)
	case model.RiskMedium:
		md.Importantf("%s", report.RiskLevelDescription)
	default:
		md.Tip(report.RiskLevelDescription)
	}
	md.PlainText("")

	md.H2("Category Scores")
	md.PlainText("")
	categories := sortedKeys(report.CategoryScores)
	rows := make([][]string, len(categories))
	chart := piechart.NewPieChart(io.Discard, piechart.WithTitle("Score by Category"), piechart.WithShowData(true))
	for i, c := range categories {
		score := report.CategoryScores[c]
		rows[i] = []string{hygiene.DisplayName(c), strconv.Itoa(score), "`" + scoreBar(score) + "`"}
		if score > 0 {
			chart.LabelAndIntValue(hygiene.DisplayName(c), uint64(score)) //nolint:gosec // score is 1-100 here
		}
	}
	md.Table(markdown.TableSet{Header: []string{"Category", "Score", ""}, Rows: rows})
	md.PlainText("")
	if len(categories) > 1 {
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	if len(report.Strengths) > 0 {
		md.H2("Strengths")
		md.PlainText("")
		md.BulletList(report.Strengths...)
		md.PlainText("")
	}
	if len(report.Weaknesses) > 0 {
		md.H2("Weaknesses")
		md.PlainText("")
		md.BulletList(report.Weaknesses...)
		md.PlainText("")
	}

	md.H2("Recommendations")
	md.PlainText("")
	recRows := make([][]string, len(report.Recommendations))
	for i, r := range report.Recommendations {
		recRows[i] = []string{string(r.Priority), hygiene.DisplayName(r.Category), r.Text}
	}
	md.Table(markdown.TableSet{Header: []string{"Priority", "Category", "Recommendation"}, Rows: recRows})
	md.PlainText("")

	md.H2("Action Plan")
	md.PlainText("")
	for _, h := range []struct {
		title string
		items []string
	}{
		{"### Immediate", report.ActionPlan.Immediate},
		{"### Short Term", report.ActionPlan.ShortTerm},
		{"### Long Term", report.ActionPlan.LongTerm},
	} {
		if len(h.items) == 0 {
			continue
		}
		md.PlainText(h.title)
		md.PlainText("")
		md.BulletList(h.items...)
		md.PlainText("")
	}

	md.H2("Summary")
	md.PlainText("")
	md.PlainText(report.Summary)
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [idguard](https://github.com/nao1215/idguard)*")
}

func riskBadge(r model.RiskLevel) string {
	switch r {
	case model.RiskHigh:
		return "🔴 High"
	case model.RiskMedium:
		return "🟡 Medium"
	default:
		return "🟢 Low"
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
