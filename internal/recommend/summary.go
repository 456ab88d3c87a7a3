package recommend

import (
	"fmt"
	"strings"

	"github.com/nao1215/idguard/internal/model"
)

// Summary limits.
const (
	summaryWeaknesses = 3
	summaryActions    = 2
	summaryStrengths  = 3
)

// Summarize renders the short narrative of a report: score, risk tier, the
// leading weaknesses and the first immediate actions.
func Summarize(r *model.HygieneReport) string {
	var b strings.Builder
	b.WriteString("Digital hygiene summary\n\n")
	fmt.Fprintf(&b, "Your overall score is %d/100, which means a %s risk level. %s\n",
		r.OverallScore, strings.ToUpper(r.RiskLevel.String()), r.RiskLevelDescription)

	if len(r.Weaknesses) > 0 {
		b.WriteString("\nMain areas to improve:\n")
		for _, w := range r.Weaknesses[:min(len(r.Weaknesses), summaryWeaknesses)] {
			fmt.Fprintf(&b, "- %s\n", afterLabel(w))
		}
	}
	if len(r.ActionPlan.Immediate) > 0 {
		b.WriteString("\nUrgent actions:\n")
		for _, a := range r.ActionPlan.Immediate[:min(len(r.ActionPlan.Immediate), summaryActions)] {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	return strings.TrimSpace(b.String())
}

func perfectSummary(r *model.HygieneReport) string {
	var b strings.Builder
	b.WriteString("Digital hygiene summary\n\n")
	fmt.Fprintf(&b, "Congratulations, you reached a perfect score of %d/100, which means a %s risk level. "+
		"Your answers show no weaknesses. Keep these habits and stay alert to new threats.\n",
		r.OverallScore, strings.ToUpper(r.RiskLevel.String()))
	if len(r.Strengths) > 0 {
		b.WriteString("\nStrengths:\n")
		for _, s := range r.Strengths[:min(len(r.Strengths), summaryStrengths)] {
			fmt.Fprintf(&b, "- %s\n", afterLabel(s))
		}
	}
	return strings.TrimSpace(b.String())
}

// afterLabel drops a leading "Label: " from a narrative.
func afterLabel(s string) string {
	if _, rest, ok := strings.Cut(s, ":"); ok {
		return strings.TrimSpace(rest)
	}
	return s
}
