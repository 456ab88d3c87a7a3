package llm

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/nao1215/idguard/internal/model"
)

//go:embed prompt.tmpl
var promptText string

var promptTemplate = template.Must(template.New("prompt").Parse(promptText))

type promptData struct {
	OverallScore   int
	CategoryScores string
	Strengths      string
	Weaknesses     string
	Categories     string
}

// BuildPrompt renders the advice prompt for req.
func BuildPrompt(req model.AdviceRequest, categories []string) (string, error) {
	data := promptData{
		OverallScore:   req.OverallScore,
		CategoryScores: indentJSON(req.CategoryScores),
		Strengths:      indentJSON(nonNil(req.Strengths)),
		Weaknesses:     indentJSON(nonNil(req.Weaknesses)),
		Categories:     strings.Join(append(append([]string{}, categories...), GeneralCategory), ", "),
	}
	var b strings.Builder
	if err := promptTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render prompt: %w", err)
	}
	return b.String(), nil
}

func indentJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
