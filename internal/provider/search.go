package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// SearchName is the provider name of the search engine.
const SearchName = "google-cse"

// DefaultSearchBaseURL is the Google Custom Search JSON API endpoint.
const DefaultSearchBaseURL = "https://www.googleapis.com/customsearch/v1"

// MaxSearchResults is the most results one search request may ask for.
const MaxSearchResults = 10

// SearchItem is one search engine hit.
type SearchItem struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Searcher runs a web search.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string, num int) Result[SearchItem]
}

// GoogleSearch is the search-engine adapter for the Custom Search JSON API.
type GoogleSearch struct {
	client  client
	baseURL string
	apiKey  string
	cseID   string
}

var _ Searcher = (*GoogleSearch)(nil)

// NewGoogleSearch returns a GoogleSearch. Without an API key and engine id
// every search fails with ErrNotConfigured.
func NewGoogleSearch(baseURL, apiKey, cseID string, opts ...Option) *GoogleSearch {
	if baseURL == "" {
		baseURL = DefaultSearchBaseURL
	}
	defaults := client{
		retry: RetryPolicy{
			MaxAttempts: 2,
			Backoff:     []time.Duration{time.Second},
			Retryable:   RetryOnStatus(http.StatusTooManyRequests, http.StatusServiceUnavailable),
		},
	}
	return &GoogleSearch{
		client:  newClient(defaults, opts...),
		baseURL: baseURL,
		apiKey:  apiKey,
		cseID:   cseID,
	}
}

// Name returns SearchName.
func (g *GoogleSearch) Name() string { return SearchName }

// Search returns up to num results for query; num is clamped to 1..10.
func (g *GoogleSearch) Search(ctx context.Context, query string, num int) Result[SearchItem] {
	if g.apiKey == "" || g.cseID == "" {
		return Failure[SearchItem](SearchName, ErrNotConfigured.Error())
	}
	num = min(max(num, 1), MaxSearchResults)

	params := url.Values{}
	params.Set("key", g.apiKey)
	params.Set("cx", g.cseID)
	params.Set("q", query)
	params.Set("num", strconv.Itoa(num))
	endpoint := g.baseURL + "?" + params.Encode()

	resp, err := g.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		g.client.logger.Warn("search failed", "provider", SearchName, "error", err)
		return Failure[SearchItem](SearchName, err.Error())
	}
	if resp.status != http.StatusOK {
		g.client.logger.Warn("search rejected", "provider", SearchName, "status", resp.status)
		return Failure[SearchItem](SearchName, fmt.Sprintf("%s: %d", ErrUnexpectedStatus, resp.status))
	}

	var payload struct {
		Items []SearchItem `json:"items"`
	}
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return Failure[SearchItem](SearchName, fmt.Sprintf("%s: %v", ErrMalformedResponse, err))
	}

	items := make([]SearchItem, 0, len(payload.Items))
	for _, it := range payload.Items {
		if it.Link == "" {
			continue
		}
		items = append(items, it)
	}
	return Success(SearchName, items)
}
