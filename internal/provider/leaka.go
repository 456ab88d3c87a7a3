package provider

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/tor"
)

// DarkWebSearchName is the provider name of leak-service A.
const DarkWebSearchName = "dark-web-search"

// Defaults of the dark-web search adapter.
const (
	// DefaultDarkWebBaseURL is the clearnet front end of the search engine.
	DefaultDarkWebBaseURL = "https://ahmia.fi"

	// DefaultDarkWebLimit caps the number of results kept from one page.
	DefaultDarkWebLimit = 20

	// maxExcerptLength caps a result snippet.
	maxExcerptLength = 300
)

// DarkWebSearch is leak-service A: an onion search engine whose result page
// lists hidden services mentioning the query. Results carry the onion
// address as a reference and never a URL, since onion links are not
// reachable without Tor and must not be opened by accident.
type DarkWebSearch struct {
	client  client
	baseURL string
	limit   int
}

var _ FindingSource = (*DarkWebSearch)(nil)

// NewDarkWebSearch returns a DarkWebSearch. Pass WithHTTPClient with a Tor
// client to route the search through Tor.
func NewDarkWebSearch(baseURL string, opts ...Option) *DarkWebSearch {
	if baseURL == "" {
		baseURL = DefaultDarkWebBaseURL
	}
	defaults := client{
		retry: RetryPolicy{
			MaxAttempts: 2,
			Backoff:     []time.Duration{2 * time.Second},
			Retryable:   RetryOnTransient,
		},
	}
	return &DarkWebSearch{
		client:  newClient(defaults, append([]Option{WithRateLimit(time.Second)}, opts...)...),
		baseURL: strings.TrimSuffix(baseURL, "/"),
		limit:   DefaultDarkWebLimit,
	}
}

// Name returns DarkWebSearchName.
func (d *DarkWebSearch) Name() string { return DarkWebSearchName }

// Find searches the engine for query.
func (d *DarkWebSearch) Find(ctx context.Context, query string) Result[model.Finding] {
	query = strings.TrimSpace(query)
	if query == "" {
		return Success(DarkWebSearchName, []model.Finding{})
	}

	endpoint := d.baseURL + "/search/?q=" + url.QueryEscape(query)
	resp, err := d.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "text/html")
		return req, nil
	})
	if err != nil {
		d.client.logger.Warn("dark-web search failed", "provider", DarkWebSearchName, "error", err)
		return Failure[model.Finding](DarkWebSearchName, err.Error())
	}
	if resp.status != http.StatusOK {
		d.client.logger.Warn("dark-web search rejected", "provider", DarkWebSearchName, "status", resp.status)
		return Failure[model.Finding](DarkWebSearchName, fmt.Sprintf("%s: %d", ErrUnexpectedStatus, resp.status))
	}

	findings, err := parseDarkWebResults(resp.body, resp.header.Get("Content-Type"), d.limit)
	if err != nil {
		return Failure[model.Finding](DarkWebSearchName, fmt.Sprintf("%s: %v", ErrMalformedResponse, err))
	}
	d.client.logger.Debug("dark-web search done", "provider", DarkWebSearchName, "results", len(findings))
	return Success(DarkWebSearchName, findings)
}

// parseDarkWebResults reads the result list of the search page. Entries
// without a valid v3 address are dropped, as are repeated addresses.
func parseDarkWebResults(body []byte, contentType string, limit int) ([]model.Finding, error) {
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	findings := []model.Finding{}
	doc.Find("li.result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		address, err := tor.NormalizeAddress(strings.TrimSpace(s.Find("cite").First().Text()))
		if err != nil || seen[address] {
			return true
		}
		seen[address] = true

		title := collapseSpace(s.Find("h4").First().Text())
		if title == "" {
			title = address
		}
		findings = append(findings, model.Finding{
			Source:    model.SourceLeakServiceA,
			Title:     title,
			Reference: address,
			Excerpt:   truncate(collapseSpace(s.Find("p").First().Text()), maxExcerptLength),
			Date:      lastSeenDate(s.Find("span.lastSeen").AttrOr("data-timestamp", "")),
		})
		return limit <= 0 || len(findings) < limit
	})
	return findings, nil
}

// lastSeenDate converts a Unix timestamp attribute to YYYY-MM-DD.
func lastSeenDate(v string) string {
	secs, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || secs <= 0 {
		return ""
	}
	return time.Unix(secs, 0).UTC().Format(time.DateOnly)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
