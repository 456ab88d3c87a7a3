package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// HTTPDoer is the part of *http.Client the adapters use.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Default transport settings shared by all adapters.
const (
	// DefaultTimeout bounds one provider request, including reading the body.
	DefaultTimeout = 10 * time.Second

	// DefaultUserAgent is sent when no other user agent is configured.
	DefaultUserAgent = "idguard"

	// maxBodySize caps how much of a provider response is read.
	maxBodySize = 5 * 1024 * 1024

	// maxRetryAfter caps how long a Retry-After header can make an adapter wait.
	maxRetryAfter = 30 * time.Second
)

// Option configures the transport of an adapter.
type Option func(*client)

// WithHTTPClient sets the HTTP client. Tests pass httptest clients here and the
// dark-web search passes a client that dials through Tor.
func WithHTTPClient(c HTTPDoer) Option {
	return func(cl *client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithRateLimit sets the minimum delay between two requests of the adapter.
// Zero or a negative value disables rate limiting.
func WithRateLimit(every time.Duration) Option {
	return func(cl *client) {
		if every <= 0 {
			cl.limiter = nil
			return
		}
		cl.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

// WithRetryPolicy replaces the adapter's retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(cl *client) {
		cl.retry = p
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		if d > 0 {
			cl.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(cl *client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// client is the transport shared by the HTTP adapters: one rate limiter per
// adapter, a retry policy and a timeout on every request.
type client struct {
	http      HTTPDoer
	limiter   *rate.Limiter
	retry     RetryPolicy
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger
}

// newClient applies opts on top of the adapter's defaults.
func newClient(defaults client, opts ...Option) client {
	c := defaults
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.userAgent == "" {
		c.userAgent = DefaultUserAgent
	}
	if c.retry.MaxAttempts == 0 {
		c.retry = NoRetry()
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
}

// do sends the request built by build, applying the rate limit, timeout and
// retry policy. The returned response is the last attempt's.
func (c *client) do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*response, error) {
	var last *response
	_, err := c.retry.Do(ctx, func(ctx context.Context) (int, time.Duration, error) {
		resp, err := c.once(ctx, build)
		if err != nil {
			return 0, 0, err
		}
		last = resp
		return resp.status, retryAfter(resp), nil
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

func (c *client) once(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := build(ctx)
	if err != nil {
		return nil, err
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

// retryAfter returns the wait requested by a 429 or 503 response.
func retryAfter(resp *response) time.Duration {
	if resp.status != http.StatusTooManyRequests && resp.status != http.StatusServiceUnavailable {
		return 0
	}
	v := strings.TrimSpace(resp.header.Get("Retry-After"))
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}
