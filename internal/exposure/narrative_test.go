package exposure

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/idguard/internal/model"
)

func TestNarrate(t *testing.T) {
	t.Parallel()

	t.Run("breaches, platforms and pastes", func(t *testing.T) {
		t.Parallel()
		email := model.NewErrorResult("test@example.com", model.InputEmail, "", time.Now())
		email.Status = model.StatusSuccess
		email.Breaches = []model.Breach{{Name: "Adobe", Title: "Adobe", BreachDate: "2013-10-04", DataClasses: []string{"Passwords"}}}
		email.TotalBreaches = 1
		email.RiskLevel = model.RiskHigh

		query := model.NewErrorResult("john_doe123", model.InputUsername, "", time.Now())
		query.Status = model.StatusSuccess
		query.FoundOn = []model.PlatformMention{{Platform: "github"}, {Platform: "reddit"}}
		query.Pastes = []model.Finding{{Title: "p"}}

		n := Narrate(model.NewCombinedReport(email, query, time.Now()))
		wantFindings := []string{
			"Your email was found in 1 data breaches.",
			"Breach: Adobe (2013-10-04). Types of data: Passwords.",
			"Your username was found on 2 platforms: github, reddit.",
			"Your information was found in paste sites, which may indicate a data leak.",
		}
		if !slices.Equal(n.Findings, wantFindings) {
			t.Errorf("findings = %q", n.Findings)
		}
		joined := strings.Join(n.Recommendations, "\n")
		for _, want := range []string{"password manager", "different usernames", "Monitor your accounts", "different email"} {
			if !strings.Contains(joined, want) {
				t.Errorf("recommendations miss %q:\n%s", want, joined)
			}
		}
	})

	t.Run("clean email", func(t *testing.T) {
		t.Parallel()
		email := model.NewErrorResult("test@example.com", model.InputEmail, "", time.Now())
		email.Status = model.StatusSuccess

		n := Narrate(model.NewCombinedReport(email, nil, time.Now()))
		if len(n.Findings) != 1 || !strings.HasPrefix(n.Findings[0], "Good news") {
			t.Errorf("findings = %q", n.Findings)
		}
		if len(n.Recommendations) != 0 {
			t.Errorf("recommendations = %q", n.Recommendations)
		}
	})

	t.Run("nil report", func(t *testing.T) {
		t.Parallel()
		if n := Narrate(nil); n == nil || n.Findings == nil {
			t.Error("expected empty narrative")
		}
	})
}
