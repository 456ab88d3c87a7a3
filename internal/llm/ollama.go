package llm

import (
	"context"
	"fmt"
	"strings"
)

// Ollama generates text with a local Ollama server.
type Ollama struct {
	baseURL string
	model   string
	transport
}

// NewOllama returns an Ollama backend for model.
func NewOllama(baseURL, model string, opts ...Option) *Ollama {
	return &Ollama{
		baseURL:   strings.TrimRight(baseURL, "/"),
		model:     model,
		transport: newTransport(opts...),
	}
}

// Name implements Generator.
func (o *Ollama) Name() string {
	return "ollama/" + o.model
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error"`
}

// Generate implements Generator.
func (o *Ollama) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaRequest{Model: o.model, Prompt: prompt, Format: "json"}

	var resp ollamaResponse
	if err := o.postJSON(ctx, o.baseURL+"/api/generate", nil, req, &resp); err != nil {
		return "", fmt.Errorf("ollama %s: %w", o.model, err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("ollama %s: %s", o.model, resp.Error)
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("ollama %s: %w", o.model, ErrEmptyReply)
	}
	return resp.Response, nil
}
