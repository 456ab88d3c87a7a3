package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Gemini generates text with the Gemini generateContent REST API.
// When the primary model fails, the fallback model is tried once.
type Gemini struct {
	baseURL  string
	apiKey   string
	model    string
	fallback string
	transport
}

// NewGemini returns a Gemini backend. An empty fallback disables the second try.
func NewGemini(baseURL, apiKey, model, fallback string, opts ...Option) *Gemini {
	return &Gemini{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		model:     model,
		fallback:  fallback,
		transport: newTransport(opts...),
	}
}

// Name implements Generator.
func (g *Gemini) Name() string {
	return "gemini/" + g.model
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature      float64 `json:"temperature"`
		ResponseMIMEType string  `json:"responseMimeType"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// Generate implements Generator.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := g.generate(ctx, g.model, prompt)
	if err == nil || g.fallback == "" || g.fallback == g.model {
		return text, err
	}
	g.logger.Warn("primary model failed, trying fallback",
		"model", g.model, "fallback", g.fallback, "error", err)

	text, ferr := g.generate(ctx, g.fallback, prompt)
	if ferr != nil {
		return "", errors.Join(err, ferr)
	}
	return text, nil
}

func (g *Gemini) generate(ctx context.Context, model, prompt string) (string, error) {
	var req geminiRequest
	req.Contents = []geminiContent{{Parts: []geminiPart{{Text: prompt}}}}
	req.GenerationConfig.Temperature = 0.2
	req.GenerationConfig.ResponseMIMEType = "application/json"

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(model))
	header := http.Header{}
	header.Set("x-goog-api-key", g.apiKey)

	var resp geminiResponse
	if err := g.postJSON(ctx, endpoint, header, req, &resp); err != nil {
		return "", fmt.Errorf("gemini %s: %w", model, err)
	}
	if reason := resp.PromptFeedback.BlockReason; reason != "" {
		return "", fmt.Errorf("gemini %s: %w: %s", model, ErrBlocked, reason)
	}

	var b strings.Builder
	for _, c := range resp.Candidates {
		for _, p := range c.Content.Parts {
			b.WriteString(p.Text)
		}
		if b.Len() > 0 {
			break
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("gemini %s: %w", model, ErrEmptyReply)
	}
	return b.String(), nil
}
