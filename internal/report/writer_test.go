package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nao1215/idguard/internal/model"
)

var testTime = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// createExposureReport creates a combined report with sample data for testing.
func createExposureReport() *model.CombinedReport {
	email := &model.ExposureResult{
		Status:    model.StatusSuccess,
		Query:     "john.doe@example.com",
		InputType: model.InputEmail,
		Timestamp: testTime,
		RiskLevel: model.RiskHigh,
		Breaches: []model.Breach{
			{Name: "Adobe", Title: "Adobe", BreachDate: "2013-10-04", PwnCount: 152445165, DataClasses: []string{"Email addresses", "Passwords"}},
		},
		Pastes: []model.Finding{
			{Source: model.SourcePasteSearch, Title: "Archived paste on pastebin.com", URL: "https://web.archive.org/web/20200101000000/https://pastebin.com/abc", Date: "2020-01-01", Excerpt: "login dump", ContainsSensitive: true},
		},
		Leaks: []model.Finding{
			{Source: model.SourceLeakServiceB, Title: "Record in leaks.private", Reference: "6f1c7c9e-0000-4000-8000-000000000000"},
		},
		TotalBreaches:  2,
		ProviderErrors: map[string]string{"dark-web-search": "timeout"},
	}
	query := &model.ExposureResult{
		Status:    model.StatusSuccess,
		Query:     "johndoe",
		InputType: model.InputUsername,
		Timestamp: testTime,
		RiskLevel: model.RiskMedium,
		Breaches:  []model.Breach{},
		Pastes:    []model.Finding{},
		Leaks:     []model.Finding{},
		FoundOn: []model.PlatformMention{
			{Platform: "github", URL: "https://github.com/johndoe", Title: "johndoe", Note: model.UnconfirmedMentionNote},
		},
	}
	report := model.NewCombinedReport(email, query, testTime)
	report.Narrative = &model.ExposureNarrative{
		Findings:        []string{"Your e-mail appeared in 2 breaches."},
		Recommendations: []string{"Change your passwords."},
	}
	return report
}

func createHygieneReport() *model.HygieneReport {
	recs := []model.Recommendation{
		{Category: "account_security", Text: "Use a password manager.", Priority: model.PriorityHigh},
	}
	plan := model.ActionPlan{Immediate: []string{"Turn on 2FA"}, ShortTerm: []string{}, LongTerm: []string{"Repeat the check"}}
	return &model.HygieneReport{
		ReportVersion:        "1.3",
		GeneratedAt:          testTime,
		OverallScore:         42,
		CategoryScores:       map[string]int{"account_security": 33, "device_security": 50},
		Strengths:            []string{"Excellent practice (Account Security): 2FA"},
		Weaknesses:           []string{"Critical weakness (Account Security): reuse"},
		Recommendations:      recs,
		ActionPlan:           plan,
		RiskLevel:            model.RiskHigh,
		RiskLevelDescription: "Needs attention.",
		Summary:              "Your overall score is 42/100.",
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes exposure report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteExposure(createExposureReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		output := buf.String()
		for _, want := range []string{
			"IDENTITY EXPOSURE REPORT", "john.doe@example.com", "Overall risk:   HIGH",
			"Adobe (2013-10-04)", "! Archived paste on pastebin.com", "Reference: 6f1c7c9e",
			"github: https://github.com/johndoe", "WHAT WE FOUND", "Change your passwords.",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "dark-web-search") {
			t.Error("provider errors should only be shown in verbose mode")
		}
	})

	t.Run("masks e-mail and shows details when asked", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		w := NewSimpleWriter(&buf, WithMaskedEmail(true), WithVerbose(true))
		if _, err := w.WriteExposure(createExposureReport()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		if strings.Contains(output, "john.doe@example.com") || !strings.Contains(output, "j***@example.com") {
			t.Error("expected masked e-mail address")
		}
		if !strings.Contains(output, "dark-web-search: timeout") || !strings.Contains(output, "Excerpt: login dump") {
			t.Error("expected verbose details")
		}
	})

	t.Run("writes rejected input", func(t *testing.T) {
		t.Parallel()

		report := model.NewCombinedReport(model.NewErrorResult("bad", model.InputEmail, "Invalid email format", testTime), nil, testTime)
		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteExposure(report); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "Not checked: Invalid email format") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("writes hygiene report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteHygiene(createHygieneReport()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{
			"DIGITAL HYGIENE REPORT", "Overall score:  42/100", "Account Security", "[######..............]",
			"[high  ] Use a password manager.", "Immediate:", "Turn on 2FA", "42/100.",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "Short term:") {
			t.Error("empty horizon should be hidden")
		}
	})
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes exposure report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		n, err := NewMarkdownWriter(&buf).WriteExposure(createExposureReport())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if n == 0 {
			t.Error("expected a byte count")
		}
		output := buf.String()
		for _, want := range []string{
			"# Identity Exposure Report", "j***@example.com", "🔴 High", "```mermaid",
			"Findings by Source", "Adobe", "### Pastes", "[!CAUTION]", "## Recommendations",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
		if strings.Contains(output, "john.doe@example.com") {
			t.Error("markdown must not contain the full e-mail address")
		}
	})

	t.Run("skips chart without findings", func(t *testing.T) {
		t.Parallel()

		empty := &model.ExposureResult{Status: model.StatusSuccess, Query: "a@b.io", InputType: model.InputEmail}
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteExposure(model.NewCombinedReport(empty, nil, testTime)); err != nil {
			t.Fatal(err)
		}
		if strings.Contains(buf.String(), "mermaid") || !strings.Contains(buf.String(), "No breaches found.") {
			t.Errorf("unexpected output:\n%s", buf.String())
		}
	})

	t.Run("writes hygiene report", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteHygiene(createHygieneReport()); err != nil {
			t.Fatal(err)
		}
		output := buf.String()
		for _, want := range []string{
			"# Digital Hygiene Report", "**42/100**", "Score by Category", "Device Security",
			"Use a password manager.", "### Immediate", "## Summary",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("compact exposure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteExposure(createExposureReport()); err != nil {
			t.Fatal(err)
		}
		var decoded map[string]any
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded["combined_risk"] != "high" || decoded["paste_count"] != float64(1) {
			t.Errorf("unexpected fields: %v %v", decoded["combined_risk"], decoded["paste_count"])
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("compact output should be a single line")
		}
	})

	t.Run("pretty hygiene", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).WriteHygiene(createHygieneReport()); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "\n  \"overall_score\": 42") {
			t.Errorf("expected indented output:\n%s", buf.String())
		}
	})
}

type failingWriter struct{}

func (failingWriter) WriteExposure(*model.CombinedReport) (int, error) { return 0, errors.New("disk full") }
func (failingWriter) WriteHygiene(*model.HygieneReport) (int, error)   { return 0, errors.New("disk full") }

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewSimpleWriter(&a), NewJSONWriter(&b))
	n, err := mw.WriteHygiene(createHygieneReport())
	if err != nil {
		t.Fatal(err)
	}
	if n != a.Len()+b.Len() || a.Len() == 0 || b.Len() == 0 {
		t.Errorf("n = %d, buffers %d + %d", n, a.Len(), b.Len())
	}

	var c bytes.Buffer
	stop := NewMultiWriter(failingWriter{}, NewSimpleWriter(&c))
	if _, err := stop.WriteExposure(createExposureReport()); err == nil {
		t.Error("expected error")
	}
	if c.Len() != 0 {
		t.Error("writers after a failure should not run")
	}
}

func TestAssembleExposure(t *testing.T) {
	t.Parallel()

	src := createExposureReport()
	r, err := AssembleExposure(src)
	if err != nil {
		t.Fatal(err)
	}
	if r.ModuleType != model.ModuleExposure || !r.Timestamp.Equal(testTime) {
		t.Errorf("unexpected header %+v", r)
	}
	want := model.Summary{
		Timestamp:     testTime,
		Risk:          model.RiskHigh,
		Subject:       "j***@example.com, johndoe",
		TotalBreaches: 2,
		PasteCount:    1,
		PlatformCount: 1,
	}
	if r.Summary != want {
		t.Errorf("summary = %+v, want %+v", r.Summary, want)
	}

	back, err := DecodeExposure(r)
	if err != nil {
		t.Fatal(err)
	}
	if back.EmailResult.Breaches[0].Name != "Adobe" || back.QueryResult.FoundOn[0].URL != "https://github.com/johndoe" {
		t.Errorf("full report lost data: %+v", back)
	}
	if _, err := DecodeHygiene(r); !errors.Is(err, ErrWrongModuleType) {
		t.Errorf("DecodeHygiene() error = %v", err)
	}
}

func TestDecodeExposureRecomputesPasteCount(t *testing.T) {
	t.Parallel()

	full := []byte(`{
		"email": "john.doe@example.com",
		"generated_at": "2026-10-16T12:00:00Z",
		"email_results": {
			"status": "success",
			"query": "john.doe@example.com",
			"pastes": [
				{"source": "paste-search", "title": "a", "url": "https://pastebin.com/a"},
				{"source": "paste-search", "title": "b", "url": "https://pastebin.com/b"}
			]
		}
	}`)
	r := &model.Report{ID: 7, ModuleType: model.ModuleExposure, FullReport: full}

	back, err := DecodeExposure(r)
	if err != nil {
		t.Fatalf("DecodeExposure() error = %v", err)
	}
	if len(back.EmailResult.Pastes) != 2 {
		t.Fatalf("pastes = %d, want 2", len(back.EmailResult.Pastes))
	}
	if back.PasteCount != 2 {
		t.Errorf("PasteCount = %d, want 2", back.PasteCount)
	}
}

func TestAssembleHygiene(t *testing.T) {
	t.Parallel()

	r, err := AssembleHygiene(createHygieneReport())
	if err != nil {
		t.Fatal(err)
	}
	if r.Summary.Score == nil || *r.Summary.Score != 42 {
		t.Fatalf("score = %v", r.Summary.Score)
	}
	if r.Summary.Risk != model.RiskHigh || r.Summary.WeaknessCount != 1 || r.Summary.RecommendationCount != 1 {
		t.Errorf("summary = %+v", r.Summary)
	}

	back, err := DecodeHygiene(r)
	if err != nil {
		t.Fatal(err)
	}
	if back.OverallScore != 42 || back.Recommendations[0].Priority != model.PriorityHigh {
		t.Errorf("full report lost data: %+v", back)
	}

	r.FullReport = nil
	if _, err := DecodeHygiene(r); !errors.Is(err, ErrNoFullReport) {
		t.Errorf("DecodeHygiene() error = %v", err)
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	stored, err := AssembleHygiene(createHygieneReport())
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if _, err := Render(NewSimpleWriter(&buf), stored); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "DIGITAL HYGIENE REPORT") {
		t.Error("hygiene report not rendered")
	}

	stored.ModuleType = "other"
	if _, err := Render(NewSimpleWriter(&buf), stored); !errors.Is(err, model.ErrUnknownModuleType) {
		t.Errorf("Render() error = %v", err)
	}
}

func TestExportXLSX(t *testing.T) {
	t.Parallel()

	score := 42
	reports := []model.Report{
		{ID: 2, Timestamp: testTime, ModuleType: model.ModuleHygiene, Summary: model.Summary{Risk: model.RiskHigh, Score: &score, WeaknessCount: 3}},
		{ID: 1, Timestamp: testTime.Add(-time.Hour), ModuleType: model.ModuleExposure, Summary: model.Summary{Risk: model.RiskMedium, Subject: "j***@example.com", TotalBreaches: 4}},
	}

	var buf bytes.Buffer
	if err := ExportXLSX(&buf, reports); err != nil {
		t.Fatalf("ExportXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close() //nolint:errcheck

	rows, err := f.GetRows(HistorySheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "Report ID" || rows[1][0] != "2" || rows[1][2] != "hygiene" || rows[1][5] != "42" {
		t.Errorf("unexpected rows: %v", rows[:2])
	}
	if rows[2][4] != "j***@example.com" || rows[2][6] != "4" {
		t.Errorf("unexpected exposure row: %v", rows[2])
	}
}
