package exposure

import (
	"strings"

	"github.com/nao1215/idguard/internal/model"
)

// Thresholds of the risk rules.
const (
	highBreachCount   = 5
	mediumBreachCount = 2
	mediumMentions    = 3
)

// EmailRisk is the risk of an e-mail address given its breaches and the
// number of paste and leak findings. Each rule can only raise the level:
// more than 5 breaches is high and more than 2 medium, a breach exposing
// passwords, cards, SSNs or banking data is high, and any paste or leak
// finding is at least medium.
func EmailRisk(breaches []model.Breach, pasteAndLeakHits int) model.RiskLevel {
	risk := model.RiskLow
	switch {
	case len(breaches) > highBreachCount:
		risk = risk.Escalate(model.RiskHigh)
	case len(breaches) > mediumBreachCount:
		risk = risk.Escalate(model.RiskMedium)
	}
	for _, b := range breaches {
		if b.ExposesSensitiveData() {
			risk = risk.Escalate(model.RiskHigh)
			break
		}
	}
	if pasteAndLeakHits > 0 {
		risk = risk.Escalate(model.RiskMedium)
	}
	return risk
}

// QueryRisk is the risk of a username or name. More than 3 platform
// mentions is medium, never more; a paste flagged sensitive is high.
func QueryRisk(mentions int, pastes []model.Finding) model.RiskLevel {
	risk := model.RiskLow
	if mentions > mediumMentions {
		risk = risk.Escalate(model.RiskMedium)
	}
	for _, p := range pastes {
		if p.ContainsSensitive {
			risk = risk.Escalate(model.RiskHigh)
			break
		}
	}
	return risk
}

var (
	emailSensitiveWords = []string{"password", "credentials", "login"}
	querySensitiveWords = []string{"password", "credentials", "private"}
)

// emailSensitive reports whether a snippet found for an e-mail address
// mentions a credential word.
func emailSensitive(snippet string) bool {
	return containsAny(strings.ToLower(snippet), emailSensitiveWords)
}

// querySensitive reports whether a snippet mentions both the query and a
// credential word.
func querySensitive(snippet, query string) bool {
	s := strings.ToLower(snippet)
	q := strings.ToLower(strings.TrimSpace(query))
	return q != "" && strings.Contains(s, q) && containsAny(s, querySensitiveWords)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
