package llm

import (
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/idguard/internal/model"
)

var testCategories = []string{"account_security", "device_security"}

const validReply = `{
  "recommendations": [
    {"category": "account_security", "recommendation": "Turn on 2FA for your e-mail", "priority": "high"},
    {"category": "General", "recommendation": "Review old accounts", "priority": "LOW"}
  ],
  "action_plan": {
    "immediate": ["Enable 2FA", " "],
    "short_term": [],
    "long_term": ["Audit accounts every year"]
  }
}`

func TestParseAdvice(t *testing.T) {
	t.Parallel()

	wrappers := map[string]string{
		"bare":   validReply,
		"fenced": "```json\n" + validReply + "\n```",
		"prose":  "Here is your advice:\n" + validReply + "\nGood luck!",
	}
	for name, reply := range wrappers {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAdvice(reply, testCategories)
			if err != nil {
				t.Fatalf("ParseAdvice() error = %v", err)
			}
			if len(got.Recommendations) != 2 {
				t.Fatalf("recommendations = %+v", got.Recommendations)
			}
			want := model.Recommendation{Category: "general", Text: "Review old accounts", Priority: model.PriorityLow}
			if got.Recommendations[1] != want {
				t.Errorf("second recommendation = %+v, want %+v", got.Recommendations[1], want)
			}
			if len(got.ActionPlan.Immediate) != 1 || len(got.ActionPlan.ShortTerm) != 0 || len(got.ActionPlan.LongTerm) != 1 {
				t.Errorf("action plan = %+v", got.ActionPlan)
			}
		})
	}
}

func TestParseAdviceRejects(t *testing.T) {
	t.Parallel()

	plan := `"action_plan": {"immediate": [], "short_term": [], "long_term": []}`
	tests := []struct {
		name  string
		reply string
		want  error
	}{
		{name: "no json", reply: "I cannot help with that.", want: ErrNoJSON},
		{name: "broken json", reply: `{"recommendations": [`, want: ErrNoJSON},
		{name: "syntax error", reply: `{"recommendations": [}`, want: ErrInvalidAdvice},
		{name: "missing recommendations", reply: `{` + plan + `}`, want: ErrInvalidAdvice},
		{name: "recommendations not a list", reply: `{"recommendations": {}, ` + plan + `}`, want: ErrInvalidAdvice},
		{name: "missing action plan", reply: `{"recommendations": []}`, want: ErrInvalidAdvice},
		{name: "missing horizon", reply: `{"recommendations": [], "action_plan": {"immediate": [], "short_term": []}}`, want: ErrInvalidAdvice},
		{name: "unknown category", reply: `{"recommendations": [{"category": "finance", "recommendation": "x", "priority": "high"}], ` + plan + `}`, want: ErrInvalidAdvice},
		{name: "unknown priority", reply: `{"recommendations": [{"category": "general", "recommendation": "x", "priority": "urgent"}], ` + plan + `}`, want: ErrInvalidAdvice},
		{name: "empty text", reply: `{"recommendations": [{"category": "general", "recommendation": " ", "priority": "high"}], ` + plan + `}`, want: ErrInvalidAdvice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseAdvice(tt.reply, testCategories)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseAdvice() = %+v, %v; want %v", got, err, tt.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	t.Parallel()

	prompt, err := BuildPrompt(model.AdviceRequest{
		OverallScore:   42,
		CategoryScores: map[string]int{"account_security": 33},
		Weaknesses:     []string{"Critical weakness (Account Security): reuse"},
	}, testCategories)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"42/100", `"account_security": 33`, "Critical weakness", "account_security, device_security, general", "[]"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt lacks %q", want)
		}
	}
}
