package recommend

import (
	"strings"

	"github.com/nao1215/idguard/internal/model"
)

// Risk tier thresholds on the overall score.
const (
	lowRiskScore    = 80
	mediumRiskScore = 51
)

// Risk tier descriptions.
const (
	lowRiskDescription    = "Your digital hygiene practices are generally good, but there is always room for improvement."
	mediumRiskDescription = "Your digital hygiene practices need improvement in some areas to reduce security risks."
	highRiskDescription   = "Your digital hygiene practices show significant weaknesses that need immediate attention."
)

// RiskTier maps an overall score to a risk level and its description.
func RiskTier(score int) (model.RiskLevel, string) {
	switch {
	case score >= lowRiskScore:
		return model.RiskLow, lowRiskDescription
	case score >= mediumRiskScore:
		return model.RiskMedium, mediumRiskDescription
	default:
		return model.RiskHigh, highRiskDescription
	}
}

// keywordRule adds rec when a weakness mentions any of keywords.
type keywordRule struct {
	keywords []string
	rec      model.Recommendation
}

var keywordRules = []keywordRule{
	{
		keywords: []string{"reuse"},
		rec: model.Recommendation{
			Category: "account_security",
			Text:     "Use a password manager to create and store a unique password for every account.",
			Priority: model.PriorityHigh,
		},
	},
	{
		keywords: []string{"two-factor", "2fa", "mfa", "multi-factor"},
		rec: model.Recommendation{
			Category: "account_security",
			Text:     "Enable two-factor authentication on your e-mail, banking and social media accounts, preferably with an authenticator app.",
			Priority: model.PriorityHigh,
		},
	},
	{
		keywords: []string{"update"},
		rec: model.Recommendation{
			Category: "device_security",
			Text:     "Install pending system and application updates now and turn on automatic updates.",
			Priority: model.PriorityHigh,
		},
	},
	{
		keywords: []string{"wi-fi", "wifi"},
		rec: model.Recommendation{
			Category: "browsing_habits",
			Text:     "Use a trusted VPN whenever you connect to a public Wi-Fi network.",
			Priority: model.PriorityHigh,
		},
	},
	{
		keywords: []string{"download"},
		rec: model.Recommendation{
			Category: "browsing_habits",
			Text:     "Only download software from official app stores and vendor websites.",
			Priority: model.PriorityMedium,
		},
	},
}

// keywordRecommendations scans weaknesses in order and returns the matching
// rule recommendations, each rule at most once.
func keywordRecommendations(weaknesses []string) []model.Recommendation {
	var out []model.Recommendation
	fired := make([]bool, len(keywordRules))
	for _, w := range weaknesses {
		lower := strings.ToLower(w)
		for i, r := range keywordRules {
			if fired[i] {
				continue
			}
			for _, kw := range r.keywords {
				if strings.Contains(lower, kw) {
					fired[i] = true
					out = append(out, r.rec)
					break
				}
			}
		}
	}
	return out
}

// standardThreshold is the category score below which standard advice is added.
const standardThreshold = 70

var standardPriorities = []model.Priority{model.PriorityHigh, model.PriorityMedium, model.PriorityLow}

var categoryStandards = map[string][]string{
	"account_security": {
		"Replace weak and reused passwords, starting with your e-mail account.",
		"Review the recovery e-mail and phone number of your important accounts.",
		"Check regularly whether your accounts appear in known data breaches.",
	},
	"data_sharing": {
		"Revoke app permissions that an app does not need to work.",
		"Opt out of data sharing and personalised advertising in the services you use.",
		"Use e-mail aliases when signing up for newsletters and shops.",
	},
	"device_security": {
		"Protect every device with a strong PIN or password and turn on disk encryption.",
		"Set up automatic, encrypted backups of your important files.",
		"Remove apps and browser extensions you no longer use.",
	},
	"social_media": {
		"Set your social media profiles to private and review who can see your posts.",
		"Stop sharing your location and travel plans in real time.",
		"Only accept friend or follow requests from people you know.",
	},
	"browsing_habits": {
		"Check the sender and the real link target before opening links or attachments.",
		"Use a browser with tracking protection and keep it up to date.",
		"Avoid logging in to sensitive accounts on shared or public computers.",
	},
}

// standardCount is how many standard recommendations a category score earns.
func standardCount(score int) int {
	switch {
	case score >= standardThreshold:
		return 0
	case score <= 40:
		return 3
	case score <= 55:
		return 2
	default:
		return 1
	}
}

// categoryRecommendations adds standard advice for each weak category, in
// the order of categories.
func categoryRecommendations(categories []string, scores map[string]int) []model.Recommendation {
	var out []model.Recommendation
	for _, c := range categories {
		texts := categoryStandards[c]
		n := min(standardCount(scores[c]), len(texts), len(standardPriorities))
		for i := range n {
			out = append(out, model.Recommendation{Category: c, Text: texts[i], Priority: standardPriorities[i]})
		}
	}
	return out
}

// fallbackRecommendations are used when nothing else produced advice.
var fallbackRecommendations = []model.Recommendation{
	{Category: "general", Text: "Use a password manager and a unique password for every account.", Priority: model.PriorityHigh},
	{Category: "general", Text: "Enable two-factor authentication on all important accounts.", Priority: model.PriorityHigh},
	{Category: "general", Text: "Keep your operating system, browser and apps up to date.", Priority: model.PriorityHigh},
	{Category: "general", Text: "Review the privacy settings of your social media accounts.", Priority: model.PriorityMedium},
	{Category: "general", Text: "Be careful with links and attachments from unknown senders.", Priority: model.PriorityMedium},
}

// longTermReminder is appended when the long-term horizon would stay empty.
const longTermReminder = "Repeat this assessment every few months and keep your security habits up to date."
