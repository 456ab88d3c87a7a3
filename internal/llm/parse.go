package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/idguard/internal/model"
)

// GeneralCategory is accepted in advice next to the questionnaire categories.
const GeneralCategory = "general"

// Action plan keys every reply must carry.
const (
	keyImmediate = "immediate"
	keyShortTerm = "short_term"
	keyLongTerm  = "long_term"
)

type rawAdvice struct {
	Recommendations json.RawMessage            `json:"recommendations"`
	ActionPlan      map[string]json.RawMessage `json:"action_plan"`
}

type rawRecommendation struct {
	Category       string `json:"category"`
	Recommendation string `json:"recommendation"`
	Priority       string `json:"priority"`
}

// ParseAdvice extracts the JSON object from an LLM reply and checks its shape.
//
// A ```json fence is stripped and everything from the first "{" to the last
// "}" is decoded. The reply is rejected as a whole when "recommendations" is
// not a list, when "action_plan" lacks one of immediate, short_term and
// long_term, or when a recommendation names a category outside categories
// (GeneralCategory is always allowed) or an unknown priority.
func ParseAdvice(reply string, categories []string) (*model.Advice, error) {
	text := strings.TrimSpace(reply)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}

	var raw rawAdvice
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAdvice, err)
	}

	if !bytes.HasPrefix(bytes.TrimSpace(raw.Recommendations), []byte("[")) {
		return nil, fmt.Errorf("%w: recommendations is not a list", ErrInvalidAdvice)
	}
	var recs []rawRecommendation
	if err := json.Unmarshal(raw.Recommendations, &recs); err != nil {
		return nil, fmt.Errorf("%w: recommendations: %w", ErrInvalidAdvice, err)
	}

	known := make(map[string]bool, len(categories)+1)
	known[GeneralCategory] = true
	for _, c := range categories {
		known[strings.ToLower(c)] = true
	}

	advice := &model.Advice{Recommendations: make([]model.Recommendation, 0, len(recs))}
	for i, r := range recs {
		category := strings.ToLower(strings.TrimSpace(r.Category))
		if !known[category] {
			return nil, fmt.Errorf("%w: recommendation %d has unknown category %q", ErrInvalidAdvice, i, r.Category)
		}
		priority, err := model.ParsePriority(r.Priority)
		if err != nil {
			return nil, fmt.Errorf("%w: recommendation %d: %w", ErrInvalidAdvice, i, err)
		}
		body := strings.TrimSpace(r.Recommendation)
		if body == "" {
			return nil, fmt.Errorf("%w: recommendation %d is empty", ErrInvalidAdvice, i)
		}
		advice.Recommendations = append(advice.Recommendations, model.Recommendation{
			Category: category,
			Text:     body,
			Priority: priority,
		})
	}

	if raw.ActionPlan == nil {
		return nil, fmt.Errorf("%w: action_plan missing", ErrInvalidAdvice)
	}
	horizons := []struct {
		key string
		dst *[]string
	}{
		{keyImmediate, &advice.ActionPlan.Immediate},
		{keyShortTerm, &advice.ActionPlan.ShortTerm},
		{keyLongTerm, &advice.ActionPlan.LongTerm},
	}
	for _, h := range horizons {
		data, ok := raw.ActionPlan[h.key]
		if !ok {
			return nil, fmt.Errorf("%w: action_plan.%s missing", ErrInvalidAdvice, h.key)
		}
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("%w: action_plan.%s: %w", ErrInvalidAdvice, h.key, err)
		}
		*h.dst = slices.DeleteFunc(items, func(s string) bool { return strings.TrimSpace(s) == "" })
	}
	return advice, nil
}
