package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nao1215/idguard/internal/model"
)

// LeakIndexName is the provider name of leak-service B.
const LeakIndexName = "leak-index"

// Defaults of the leak index adapter and its poller.
const (
	// DefaultLeakIndexURL is the free tier of the index.
	DefaultLeakIndexURL = "https://free.intelx.io"

	// DefaultLeakIndexMaxResults is the maxresults value of a submitted search.
	DefaultLeakIndexMaxResults = 20

	// DefaultPollAttempts bounds how often a job is polled.
	DefaultPollAttempts = 5

	// DefaultPollInterval is the delay between two polls.
	DefaultPollInterval = 2 * time.Second
)

// PollState is the status of a submitted search job.
type PollState int

// The values match the index's result status codes.
const (
	// PollReady means records were returned and more may follow.
	PollReady PollState = 0
	// PollDone means the job finished; the records returned are the last ones.
	PollDone PollState = 1
	// PollNotFound means the index no longer knows the job.
	PollNotFound PollState = 2
	// PollPending means the job has no records yet.
	PollPending PollState = 3
)

// String returns the state name.
func (s PollState) String() string {
	switch s {
	case PollReady:
		return "ready"
	case PollDone:
		return "done"
	case PollNotFound:
		return "not found"
	case PollPending:
		return "pending"
	default:
		return "unknown(" + strconv.Itoa(int(s)) + ")"
	}
}

// AsyncSource is a provider that answers a query in two phases: Submit
// starts a job and Poll fetches whatever the job has produced so far.
type AsyncSource interface {
	Name() string
	Submit(ctx context.Context, query string) (jobID string, err error)
	Poll(ctx context.Context, jobID string) (PollState, []model.Finding, error)
}

// LeakIndex is leak-service B, an asynchronous leak index. Its records are
// opaque storage ids, never URLs.
type LeakIndex struct {
	client     client
	baseURL    string
	apiKey     string
	maxResults int
}

var _ AsyncSource = (*LeakIndex)(nil)

// NewLeakIndex returns a LeakIndex. Without an API key Submit fails with
// ErrNotConfigured.
func NewLeakIndex(baseURL, apiKey string, opts ...Option) *LeakIndex {
	if baseURL == "" {
		baseURL = DefaultLeakIndexURL
	}
	defaults := client{
		retry: RetryPolicy{
			MaxAttempts: 2,
			Backoff:     []time.Duration{time.Second},
			Retryable:   RetryOnStatus(http.StatusTooManyRequests, http.StatusServiceUnavailable),
		},
	}
	return &LeakIndex{
		client:     newClient(defaults, opts...),
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		maxResults: DefaultLeakIndexMaxResults,
	}
}

// Name returns LeakIndexName.
func (l *LeakIndex) Name() string { return LeakIndexName }

// Submit starts a search for query and returns the job id.
func (l *LeakIndex) Submit(ctx context.Context, query string) (string, error) {
	if l.apiKey == "" {
		return "", ErrNotConfigured
	}

	payload, err := json.Marshal(map[string]any{
		"term":       query,
		"maxresults": l.maxResults,
	})
	if err != nil {
		return "", err
	}

	resp, err := l.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.baseURL+"/intelligent/search", bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-key", l.apiKey)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	if resp.status != http.StatusOK {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}

	var out struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	id, err := uuid.Parse(out.ID)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidJobID, out.ID)
	}
	return id.String(), nil
}

// leakRecord is the wire format of one index record.
type leakRecord struct {
	SystemID string `json:"systemid"`
	Name     string `json:"name"`
	Date     string `json:"date"`
	Bucket   string `json:"bucket"`
}

// Poll fetches the records produced so far by job jobID.
func (l *LeakIndex) Poll(ctx context.Context, jobID string) (PollState, []model.Finding, error) {
	if _, err := uuid.Parse(jobID); err != nil {
		return PollNotFound, nil, fmt.Errorf("%w: %q", ErrInvalidJobID, jobID)
	}

	params := url.Values{}
	params.Set("id", jobID)
	params.Set("limit", strconv.Itoa(l.maxResults))
	endpoint := l.baseURL + "/intelligent/search/result?" + params.Encode()

	resp, err := l.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("x-key", l.apiKey)
		return req, nil
	})
	if err != nil {
		return PollPending, nil, err
	}
	switch resp.status {
	case http.StatusOK:
	case http.StatusNotFound:
		return PollNotFound, nil, ErrJobNotFound
	default:
		return PollPending, nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}

	var out struct {
		Status  *int         `json:"status"`
		Records []leakRecord `json:"records"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return PollPending, nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if out.Status == nil {
		return PollPending, nil, fmt.Errorf("%w: missing status", ErrMalformedResponse)
	}

	state := PollState(*out.Status)
	switch state {
	case PollReady, PollDone, PollNotFound, PollPending:
	default:
		return state, nil, fmt.Errorf("%w: unknown status %d", ErrMalformedResponse, *out.Status)
	}

	findings := make([]model.Finding, 0, len(out.Records))
	for _, r := range out.Records {
		if r.SystemID == "" {
			continue
		}
		findings = append(findings, r.finding())
	}
	return state, findings, nil
}

func (r leakRecord) finding() model.Finding {
	title := strings.TrimSpace(r.Name)
	if title == "" {
		title = "Record in " + r.Bucket
	}
	date := r.Date
	if len(date) >= len(time.DateOnly) {
		date = date[:len(time.DateOnly)]
	}
	return model.Finding{
		Source:    model.SourceLeakServiceB,
		Title:     title,
		Reference: r.SystemID,
		Excerpt:   r.Bucket,
		Date:      date,
	}
}

// AsyncPoller turns an AsyncSource into a FindingSource: it submits the
// query, then polls a bounded number of times with a fixed delay and
// collects the records of every poll.
type AsyncPoller struct {
	source   AsyncSource
	attempts int
	interval time.Duration
	logger   *slog.Logger
}

var _ FindingSource = (*AsyncPoller)(nil)

// PollOption configures an AsyncPoller.
type PollOption func(*AsyncPoller)

// WithPollAttempts sets the maximum number of polls.
func WithPollAttempts(n int) PollOption {
	return func(p *AsyncPoller) {
		if n > 0 {
			p.attempts = n
		}
	}
}

// WithPollInterval sets the delay between polls. Zero polls back to back.
func WithPollInterval(d time.Duration) PollOption {
	return func(p *AsyncPoller) {
		if d >= 0 {
			p.interval = d
		}
	}
}

// WithPollLogger sets the logger.
func WithPollLogger(l *slog.Logger) PollOption {
	return func(p *AsyncPoller) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewAsyncPoller returns an AsyncPoller over source.
func NewAsyncPoller(source AsyncSource, opts ...PollOption) *AsyncPoller {
	p := &AsyncPoller{
		source:   source,
		attempts: DefaultPollAttempts,
		interval: DefaultPollInterval,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the name of the wrapped source.
func (p *AsyncPoller) Name() string { return p.source.Name() }

// Find submits query and polls for its records.
//
// Records gathered before the job stops answering are kept: running out of
// polls, losing the job or a failed poll after some records arrived is a
// success with those records. The same outcomes with nothing gathered are
// failures.
func (p *AsyncPoller) Find(ctx context.Context, query string) Result[model.Finding] {
	name := p.source.Name()

	jobID, err := p.source.Submit(ctx, query)
	if err != nil {
		p.logger.Warn("leak search submit failed", "provider", name, "error", err)
		return Failure[model.Finding](name, err.Error())
	}

	var (
		collected []model.Finding
		seen      = make(map[string]bool)
		lastErr   error
	)
	collect := func(found []model.Finding) {
		for _, f := range found {
			if seen[f.Key()] {
				continue
			}
			seen[f.Key()] = true
			collected = append(collected, f)
		}
	}

	for attempt := range p.attempts {
		if attempt > 0 {
			if err := sleep(ctx, p.interval); err != nil {
				lastErr = err
				break
			}
		}

		state, found, err := p.source.Poll(ctx, jobID)
		if err != nil {
			p.logger.Debug("leak search poll failed", "provider", name, "attempt", attempt+1, "error", err)
			lastErr = err
			if state == PollNotFound {
				break
			}
			continue
		}
		collect(found)

		switch state {
		case PollDone:
			return Success(name, collected)
		case PollNotFound:
			lastErr = ErrJobNotFound
		case PollReady, PollPending:
			continue
		}
		break
	}

	if len(collected) > 0 {
		return Success(name, collected)
	}
	reason := fmt.Sprintf("no results after %d polls", p.attempts)
	if lastErr != nil {
		reason = lastErr.Error()
	}
	p.logger.Warn("leak search gave no results", "provider", name, "reason", reason)
	return Failure[model.Finding](name, reason)
}
