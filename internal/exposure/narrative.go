package exposure

import (
	"fmt"
	"strings"

	"github.com/nao1215/idguard/internal/model"
)

// Narrate turns a combined report into plain-language findings and advice.
func Narrate(c *model.CombinedReport) *model.ExposureNarrative {
	n := &model.ExposureNarrative{Findings: []string{}, Recommendations: []string{}}
	if c == nil {
		return n
	}

	if r := c.EmailResult; r.IsSuccess() {
		if r.TotalBreaches > 0 {
			n.Findings = append(n.Findings, fmt.Sprintf("Your email was found in %d data breaches.", r.TotalBreaches))
			for _, b := range r.Breaches {
				n.Findings = append(n.Findings, breachLine(b))
			}
			n.Recommendations = append(n.Recommendations,
				"Change passwords for all accounts using this email address.",
				"Enable two-factor authentication where possible.",
			)
			if leakedPasswords(r.Breaches) {
				n.Recommendations = append(n.Recommendations,
					"Use a password manager to create and store strong, unique passwords for each account.")
			}
		} else {
			n.Findings = append(n.Findings, "Good news! Your email was not found in any known data breaches.")
		}
	}

	if r := c.QueryResult; r.IsSuccess() && len(r.FoundOn) > 0 {
		names := make([]string, len(r.FoundOn))
		for i, m := range r.FoundOn {
			names[i] = m.Platform
		}
		n.Findings = append(n.Findings, fmt.Sprintf("Your username was found on %d platforms: %s.",
			len(names), strings.Join(names, ", ")))
		n.Recommendations = append(n.Recommendations,
			"Consider using different usernames across platforms to reduce correlation of your accounts.")
	}

	if c.PasteCount > 0 {
		n.Findings = append(n.Findings, "Your information was found in paste sites, which may indicate a data leak.")
		n.Recommendations = append(n.Recommendations, "Monitor your accounts for suspicious activity.")
	}

	if c.CombinedRisk.AtLeast(model.RiskMedium) {
		n.Recommendations = append(n.Recommendations,
			"Consider using a different email for sensitive accounts.",
			"Regularly check for new data breaches involving your information.",
		)
	}
	return n
}

func breachLine(b model.Breach) string {
	date := b.BreachDate
	if date == "" {
		date = "unknown date"
	}
	classes := "Unknown"
	if len(b.DataClasses) > 0 {
		classes = strings.Join(b.DataClasses, ", ")
	}
	return fmt.Sprintf("Breach: %s (%s). Types of data: %s.", b.DisplayName(), date, classes)
}

func leakedPasswords(breaches []model.Breach) bool {
	for _, b := range breaches {
		for _, c := range b.DataClasses {
			if strings.Contains(c, "Password") {
				return true
			}
		}
	}
	return false
}
