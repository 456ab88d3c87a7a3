package hygiene

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/idguard/internal/model"
)

// MaxNarratives caps the strength and weakness lists.
const MaxNarratives = 7

// Category score thresholds for category-level narratives.
const (
	strongCategoryScore   = 85
	criticalCategoryScore = 40
	weakCategoryScore     = 60
)

// DefaultCriticalQuestions are the questions judged with stricter thresholds.
var DefaultCriticalQuestions = []string{
	"pass_reuse",
	"mfa_usage",
	"device_updates",
	"public_wifi",
	"download_habits",
}

// severity orders weaknesses; lower sorts first.
type severity int

const (
	severityCritical severity = iota
	severityConcerning
	severityOther
)

type weakness struct {
	text     string
	severity severity
}

// DisplayName turns a category key such as "account_security" into "Account Security".
func DisplayName(category string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(category, "_", " "))
}

// categoryNarrative returns the category-level strength or weakness for score.
// At most one of the results is non-empty.
func categoryNarrative(category string, score int) (string, *weakness) {
	name := DisplayName(category)
	switch {
	case score >= strongCategoryScore:
		return fmt.Sprintf("Strength: good overall practices in %s", name), nil
	case score <= criticalCategoryScore:
		return "", &weakness{
			text:     fmt.Sprintf("Weakness: %s practices need immediate attention", name),
			severity: severityOther,
		}
	case score <= weakCategoryScore:
		return "", &weakness{
			text:     fmt.Sprintf("Weakness: %s practices could be improved", name),
			severity: severityOther,
		}
	}
	return "", nil
}

// answerNarrative returns the per-answer strength or weakness.
func answerNarrative(category string, q model.Question, value int, critical bool) (string, *weakness) {
	name := DisplayName(category)
	answer := shortLabel(q.Label(value))

	switch {
	case critical && value == 1:
		return "", &weakness{
			text:     fmt.Sprintf("Critical weakness (%s): %s Answer: %s", name, q.Question, answer),
			severity: severityCritical,
		}
	case critical && value == 2:
		return "", &weakness{
			text:     fmt.Sprintf("Concerning weakness (%s): %s Answer: %s", name, q.Question, answer),
			severity: severityConcerning,
		}
	case !critical && value <= 2:
		return "", &weakness{
			text:     fmt.Sprintf("Weak answer (%s): %s Answer: %s", name, q.Question, answer),
			severity: severityOther,
		}
	case value == model.MaxAnswerValue:
		return fmt.Sprintf("Excellent practice (%s): %s Answer: %s", name, q.Question, answer), nil
	case value == 3:
		return fmt.Sprintf("Good practice (%s): %s Answer: %s", name, q.Question, answer), nil
	}
	return "", nil
}

// shortLabel drops the parenthesised detail of an option text.
func shortLabel(label string) string {
	if i := strings.Index(label, "("); i > 0 {
		label = label[:i]
	}
	return strings.TrimSpace(label)
}

func finalizeStrengths(in []string) []string {
	out := dedupe(in)
	if len(out) > MaxNarratives {
		out = out[:MaxNarratives]
	}
	return out
}

func finalizeWeaknesses(in []weakness) []string {
	seen := make(map[string]bool, len(in))
	unique := make([]weakness, 0, len(in))
	for _, w := range in {
		if seen[w.text] {
			continue
		}
		seen[w.text] = true
		unique = append(unique, w)
	}
	slices.SortStableFunc(unique, func(a, b weakness) int {
		return int(a.severity) - int(b.severity)
	})
	if len(unique) > MaxNarratives {
		unique = unique[:MaxNarratives]
	}
	out := make([]string, len(unique))
	for i, w := range unique {
		out[i] = w.text
	}
	return out
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
