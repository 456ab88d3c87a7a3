package validator

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/idguard/internal/provider"
)

// DefaultProbeTimeout bounds one probe request.
const DefaultProbeTimeout = 10 * time.Second

// probeRange asks for the first kilobyte only.
const probeRange = "bytes=0-1023"

// Prober decides whether a URL is reachable.
type Prober interface {
	Probe(ctx context.Context, rawURL string) bool
}

// HTTPProber probes URLs over HTTP.
type HTTPProber struct {
	client    provider.HTTPDoer
	timeout   time.Duration
	userAgent string
}

var _ Prober = (*HTTPProber)(nil)

// ProberOption configures an HTTPProber.
type ProberOption func(*HTTPProber)

// WithProbeClient sets the HTTP client.
func WithProbeClient(c provider.HTTPDoer) ProberOption {
	return func(p *HTTPProber) {
		if c != nil {
			p.client = c
		}
	}
}

// WithProbeTimeout sets the per-request timeout.
func WithProbeTimeout(d time.Duration) ProberOption {
	return func(p *HTTPProber) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithProbeUserAgent sets the User-Agent header.
func WithProbeUserAgent(ua string) ProberOption {
	return func(p *HTTPProber) {
		if ua != "" {
			p.userAgent = ua
		}
	}
}

// NewHTTPProber returns an HTTPProber.
func NewHTTPProber(opts ...ProberOption) *HTTPProber {
	p := &HTTPProber{
		client:    &http.Client{},
		timeout:   DefaultProbeTimeout,
		userAgent: provider.DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe reports whether rawURL is an http(s) URL that answers with a status
// below 400. A HEAD answered with 4xx or 5xx gets a second chance as a GET
// for the first kilobyte, since many sites refuse HEAD.
func (p *HTTPProber) Probe(ctx context.Context, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return false
	}

	status, err := p.request(ctx, http.MethodHead, u.String())
	if err != nil {
		return false
	}
	if status < http.StatusBadRequest {
		return true
	}

	status, err = p.request(ctx, http.MethodGet, u.String())
	return err == nil && status < http.StatusBadRequest
}

func (p *HTTPProber) request(ctx context.Context, method, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("User-Agent", p.userAgent)
	if method == http.MethodGet {
		req.Header.Set("Range", probeRange)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close() //nolint:errcheck // probe body is discarded
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))
	return resp.StatusCode, nil
}
