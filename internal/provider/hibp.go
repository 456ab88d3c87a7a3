package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/nao1215/idguard/internal/model"
)

// HIBPName is the provider name of the breach database.
const HIBPName = "hibp"

// Defaults of the HaveIBeenPwned adapter.
const (
	// DefaultHIBPBaseURL is the v3 API root.
	DefaultHIBPBaseURL = "https://haveibeenpwned.com/api/v3/"

	// HIBPRateLimit is the minimum delay between two breach lookups.
	HIBPRateLimit = 1500 * time.Millisecond

	// hibpRetryWait is how long to wait after a 429 without a Retry-After header.
	hibpRetryWait = 2 * HIBPRateLimit
)

// BreachSource looks up the breaches an e-mail address appears in.
type BreachSource interface {
	Name() string
	Breaches(ctx context.Context, email string, includeUnverified bool) Result[model.Breach]
}

// HIBP is the breach-database adapter for the HaveIBeenPwned v3 API.
type HIBP struct {
	client  client
	baseURL string
	apiKey  string
}

var _ BreachSource = (*HIBP)(nil)

// NewHIBP returns an HIBP adapter. An empty apiKey yields an adapter that
// always fails with ErrNotConfigured without sending a request.
func NewHIBP(baseURL, apiKey string, opts ...Option) *HIBP {
	if baseURL == "" {
		baseURL = DefaultHIBPBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	defaults := client{
		retry: RetryPolicy{
			MaxAttempts: 2,
			Backoff:     []time.Duration{hibpRetryWait},
			Retryable:   RetryOnStatus(http.StatusTooManyRequests),
		},
	}
	h := &HIBP{
		client:  newClient(defaults, append([]Option{WithRateLimit(HIBPRateLimit)}, opts...)...),
		baseURL: baseURL,
		apiKey:  apiKey,
	}
	return h
}

// Name returns HIBPName.
func (h *HIBP) Name() string { return HIBPName }

// hibpBreach is the wire format of one breach.
type hibpBreach struct {
	Name         string   `json:"Name"`
	Title        string   `json:"Title"`
	Domain       string   `json:"Domain"`
	BreachDate   string   `json:"BreachDate"`
	AddedDate    string   `json:"AddedDate"`
	PwnCount     int64    `json:"PwnCount"`
	Description  string   `json:"Description"`
	DataClasses  []string `json:"DataClasses"`
	IsVerified   bool     `json:"IsVerified"`
	IsFabricated bool     `json:"IsFabricated"`
	IsSensitive  bool     `json:"IsSensitive"`
}

// Breaches returns the breaches email appears in. A 404 means "not pwned"
// and is an empty success.
func (h *HIBP) Breaches(ctx context.Context, email string, includeUnverified bool) Result[model.Breach] {
	if h.apiKey == "" {
		return Failure[model.Breach](HIBPName, ErrNotConfigured.Error())
	}

	endpoint := h.baseURL + "breachedaccount/" + url.PathEscape(email) + "?truncateResponse=false"
	if includeUnverified {
		endpoint += "&includeUnverified=true"
	}

	resp, err := h.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("hibp-api-key", h.apiKey)
		req.Header.Set("Accept", "application/json")
		return req, nil
	})
	if err != nil {
		h.client.logger.Warn("breach lookup failed", "provider", HIBPName, "email", email, "error", err)
		return Failure[model.Breach](HIBPName, err.Error())
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return Success(HIBPName, []model.Breach{})
	default:
		h.client.logger.Warn("breach lookup rejected", "provider", HIBPName, "status", resp.status)
		return Failure[model.Breach](HIBPName, fmt.Sprintf("%s: %d", ErrUnexpectedStatus, resp.status))
	}

	var wire []hibpBreach
	if err := json.Unmarshal(resp.body, &wire); err != nil {
		return Failure[model.Breach](HIBPName, fmt.Sprintf("%s: %v", ErrMalformedResponse, err))
	}

	breaches := make([]model.Breach, 0, len(wire))
	for _, w := range wire {
		if w.Name == "" {
			continue
		}
		breaches = append(breaches, model.Breach{
			Name:         w.Name,
			Title:        w.Title,
			Domain:       w.Domain,
			BreachDate:   w.BreachDate,
			AddedDate:    w.AddedDate,
			PwnCount:     w.PwnCount,
			Description:  w.Description,
			DataClasses:  w.DataClasses,
			IsVerified:   w.IsVerified,
			IsFabricated: w.IsFabricated,
			IsSensitive:  w.IsSensitive,
		})
	}
	return Success(HIBPName, breaches)
}
