package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/idguard/internal/hygiene"
	idlog "github.com/nao1215/idguard/internal/log"
	"github.com/nao1215/idguard/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable plain text reports for the terminal.
// Text is ASCII-formatted without colors so it pipes cleanly to files.
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose adds excerpts, dates and provider errors.
	verbose bool

	// maskEmail shortens the checked e-mail address in the header.
	maskEmail bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithMaskedEmail prints the checked address as j***@example.com.
func WithMaskedEmail(mask bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.maskEmail = mask
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteExposure outputs an exposure check in human-readable format.
func (w *SimpleWriter) WriteExposure(report *model.CombinedReport) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "IDENTITY EXPOSURE REPORT")
	if report.Email != "" {
		email := report.Email
		if w.maskEmail {
			email = idlog.MaskEmail(email)
		}
		fmt.Fprintf(&sb, "E-mail:         %s\n", email)
	}
	if report.Query != "" {
		fmt.Fprintf(&sb, "Query:          %s\n", report.Query)
	}
	fmt.Fprintf(&sb, "Checked:        %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Overall risk:   %s\n\n", strings.ToUpper(report.CombinedRisk.String()))

	if r := report.EmailResult; r != nil {
		w.writeEmailResult(&sb, r)
	}
	if r := report.QueryResult; r != nil {
		w.writeQueryResult(&sb, r)
	}
	if n := report.Narrative; n != nil {
		w.writeList(&sb, "WHAT WE FOUND", n.Findings, "-")
		w.writeList(&sb, "RECOMMENDATIONS", n.Recommendations, "*")
	}

	w.writeFooter(&sb)
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeEmailResult(sb *strings.Builder, r *model.ExposureResult) {
	w.writeSection(sb, "E-MAIL EXPOSURE")
	if !r.IsSuccess() {
		fmt.Fprintf(sb, "  Not checked: %s\n\n", r.Message)
		return
	}
	fmt.Fprintf(sb, "  Risk:           %s\n", strings.ToUpper(r.RiskLevel.String()))
	fmt.Fprintf(sb, "  Total breaches: %d\n\n", r.TotalBreaches)

	if len(r.Breaches) > 0 || w.showEmpty {
		sb.WriteString("[!] Breaches\n")
		if len(r.Breaches) == 0 {
			sb.WriteString("  None\n")
		}
		for _, b := range r.Breaches {
			fmt.Fprintf(sb, "  * %s", b.DisplayName())
			if b.BreachDate != "" {
				fmt.Fprintf(sb, " (%s)", b.BreachDate)
			}
			sb.WriteString("\n")
			if len(b.DataClasses) > 0 {
				fmt.Fprintf(sb, "    Data: %s\n", strings.Join(b.DataClasses, ", "))
			}
		}
		sb.WriteString("\n")
	}
	w.writeFindings(sb, "[!] Pastes", r.Pastes)
	w.writeFindings(sb, "[!] Leaks", r.Leaks)
	w.writeProviderErrors(sb, r)
}

func (w *SimpleWriter) writeQueryResult(sb *strings.Builder, r *model.ExposureResult) {
	w.writeSection(sb, "USERNAME EXPOSURE")
	if !r.IsSuccess() {
		fmt.Fprintf(sb, "  Not checked: %s\n\n", r.Message)
		return
	}
	fmt.Fprintf(sb, "  Risk:       %s\n", strings.ToUpper(r.RiskLevel.String()))
	fmt.Fprintf(sb, "  Query type: %s\n\n", r.InputType)

	if len(r.FoundOn) > 0 || w.showEmpty {
		sb.WriteString("[+] Possible profiles\n")
		if len(r.FoundOn) == 0 {
			sb.WriteString("  None\n")
		}
		for _, m := range r.FoundOn {
			fmt.Fprintf(sb, "  * %s: %s\n", m.Platform, m.URL)
			if w.verbose && m.Note != "" {
				fmt.Fprintf(sb, "    Note: %s\n", m.Note)
			}
		}
		sb.WriteString("\n")
	}
	w.writeFindings(sb, "[!] Pastes", r.Pastes)
	w.writeProviderErrors(sb, r)
}

func (w *SimpleWriter) writeFindings(sb *strings.Builder, header string, findings []model.Finding) {
	if len(findings) == 0 && !w.showEmpty {
		return
	}
	sb.WriteString(header + "\n")
	if len(findings) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, f := range findings {
		marker := "*"
		if f.ContainsSensitive {
			marker = "!"
		}
		fmt.Fprintf(sb, "  %s %s\n", marker, f.Title)
		if f.URL != "" {
			fmt.Fprintf(sb, "    URL: %s\n", f.URL)
		} else if f.Reference != "" {
			fmt.Fprintf(sb, "    Reference: %s\n", f.Reference)
		}
		if w.verbose {
			if f.Date != "" {
				fmt.Fprintf(sb, "    Date: %s\n", f.Date)
			}
			if f.Excerpt != "" {
				fmt.Fprintf(sb, "    Excerpt: %s\n", f.Excerpt)
			}
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeProviderErrors(sb *strings.Builder, r *model.ExposureResult) {
	if !w.verbose || len(r.ProviderErrors) == 0 {
		return
	}
	sb.WriteString("[?] Providers without results\n")
	for _, name := range sortedKeys(r.ProviderErrors) {
		fmt.Fprintf(sb, "  - %s: %s\n", name, r.ProviderErrors[name])
	}
	sb.WriteString("\n")
}

// WriteHygiene outputs a hygiene assessment in human-readable format.
func (w *SimpleWriter) WriteHygiene(report *model.HygieneReport) (int, error) {
	var sb strings.Builder

	w.writeTitle(&sb, "DIGITAL HYGIENE REPORT")
	fmt.Fprintf(&sb, "Assessed:       %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Overall score:  %d/100\n", report.OverallScore)
	fmt.Fprintf(&sb, "Risk level:     %s\n", strings.ToUpper(report.RiskLevel.String()))
	if report.AIAugmented {
		sb.WriteString("Advice:         rule-based and AI-generated\n")
	} else {
		sb.WriteString("Advice:         rule-based\n")
	}
	sb.WriteString("\n")
	sb.WriteString(report.RiskLevelDescription + "\n\n")

	w.writeSection(&sb, "CATEGORY SCORES")
	for _, c := range sortedKeys(report.CategoryScores) {
		score := report.CategoryScores[c]
		fmt.Fprintf(&sb, "  %-18s %3d  %s\n", hygiene.DisplayName(c), score, scoreBar(score))
	}
	sb.WriteString("\n")

	w.writeList(&sb, "STRENGTHS", report.Strengths, "+")
	w.writeList(&sb, "WEAKNESSES", report.Weaknesses, "-")

	w.writeSection(&sb, "RECOMMENDATIONS")
	for _, r := range report.Recommendations {
		fmt.Fprintf(&sb, "  [%-6s] %s\n", r.Priority, r.Text)
	}
	sb.WriteString("\n")

	w.writeSection(&sb, "ACTION PLAN")
	w.writePlan(&sb, "Immediate", report.ActionPlan.Immediate)
	w.writePlan(&sb, "Short term", report.ActionPlan.ShortTerm)
	w.writePlan(&sb, "Long term", report.ActionPlan.LongTerm)

	w.writeSection(&sb, "SUMMARY")
	sb.WriteString(report.Summary + "\n\n")

	w.writeFooter(&sb)
	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writePlan(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 && !w.showEmpty {
		return
	}
	sb.WriteString(label + ":\n")
	for _, item := range items {
		fmt.Fprintf(sb, "  - %s\n", item)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeList(sb *strings.Builder, title string, items []string, bullet string) {
	if len(items) == 0 && !w.showEmpty {
		return
	}
	w.writeSection(sb, title)
	if len(items) == 0 {
		sb.WriteString("  None\n")
	}
	for _, item := range items {
		fmt.Fprintf(sb, "  %s %s\n", bullet, item)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeTitle(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	pad := max((ruleWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad) + title + "\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title + "\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString("Report generated by idguard\n")
	sb.WriteString("https://github.com/nao1215/idguard\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
}

// scoreBar draws a 20-character bar for a 0-100 score.
func scoreBar(score int) string {
	filled := min(max(score, 0), 100) / 5
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", 20-filled) + "]"
}
