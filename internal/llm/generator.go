package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultTimeout bounds one generation request.
const DefaultTimeout = 30 * time.Second

// maxReplySize caps how much of a backend reply is read.
const maxReplySize = 2 * 1024 * 1024

// Generator produces text for a prompt.
type Generator interface {
	// Name identifies the backend and model in logs.
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// HTTPDoer is the part of *http.Client the backends use.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a backend.
type Option func(*transport)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(t *transport) {
		if c != nil {
			t.http = c
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(t *transport) {
		if d > 0 {
			t.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(t *transport) {
		if ua != "" {
			t.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *transport) {
		if l != nil {
			t.logger = l
		}
	}
}

type transport struct {
	http      HTTPDoer
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

func newTransport(opts ...Option) transport {
	t := transport{
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: "idguard",
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

// postJSON sends in as JSON to url and decodes a 200 reply into out.
func (t transport) postJSON(ctx context.Context, url string, header http.Header, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", t.userAgent)

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplySize))
	if err != nil {
		return fmt.Errorf("failed to read reply: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	return nil
}
