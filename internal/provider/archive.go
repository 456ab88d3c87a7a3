package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/idguard/internal/model"
)

// ArchiveName is the provider name of the web archive.
const ArchiveName = "wayback"

// Defaults of the Wayback Machine CDX adapter.
const (
	// DefaultArchiveBaseURL is the CDX search endpoint.
	DefaultArchiveBaseURL = "https://web.archive.org/cdx/search/cdx"

	// DefaultArchiveLimit is the number of snapshots requested per domain.
	DefaultArchiveLimit = 10

	// archiveSnapshotURL is the public URL pattern of one snapshot.
	archiveSnapshotURL = "https://web.archive.org/web/%s/%s"

	// cdxTimestampLayout is the CDX timestamp format (yyyyMMddhhmmss).
	cdxTimestampLayout = "20060102150405"
)

// DefaultPasteDomains are the paste sites searched in the archive.
var DefaultPasteDomains = []string{"pastebin.com", "ghostbin.com", "paste.ee"}

// Archive finds archived snapshots of pages on the given domains whose URL
// matches a query.
type Archive interface {
	Name() string
	Snapshots(ctx context.Context, query string, domains []string) Result[model.Finding]
}

// Wayback is the web-archive adapter for the Wayback Machine CDX API.
type Wayback struct {
	client  client
	baseURL string
	limit   int
}

var _ Archive = (*Wayback)(nil)

// NewWayback returns a Wayback adapter.
func NewWayback(baseURL string, opts ...Option) *Wayback {
	if baseURL == "" {
		baseURL = DefaultArchiveBaseURL
	}
	defaults := client{
		retry: RetryPolicy{
			MaxAttempts: 2,
			Backoff:     []time.Duration{time.Second},
			Retryable:   RetryOnTransient,
		},
	}
	return &Wayback{
		client:  newClient(defaults, opts...),
		baseURL: baseURL,
		limit:   DefaultArchiveLimit,
	}
}

// Name returns ArchiveName.
func (w *Wayback) Name() string { return ArchiveName }

// Snapshots queries every domain in turn. It fails only when every domain
// failed; partial answers are a success.
func (w *Wayback) Snapshots(ctx context.Context, query string, domains []string) Result[model.Finding] {
	filter := archiveFilter(query)
	if filter == "" || len(domains) == 0 {
		return Success(ArchiveName, []model.Finding{})
	}

	var (
		findings []model.Finding
		failures []string
	)
	for _, domain := range domains {
		found, err := w.domainSnapshots(ctx, domain, filter)
		if err != nil {
			w.client.logger.Debug("archive lookup failed", "provider", ArchiveName, "domain", domain, "error", err)
			failures = append(failures, domain+": "+err.Error())
			continue
		}
		findings = append(findings, found...)
	}

	if len(failures) == len(domains) {
		return Failure[model.Finding](ArchiveName, strings.Join(failures, "; "))
	}
	return Success(ArchiveName, findings)
}

func (w *Wayback) domainSnapshots(ctx context.Context, domain, filter string) ([]model.Finding, error) {
	params := url.Values{}
	params.Set("url", domain+"/*")
	params.Set("output", "json")
	params.Set("fl", "timestamp,original")
	params.Set("filter", "original:"+filter)
	params.Set("collapse", "urlkey")
	params.Set("limit", strconv.Itoa(w.limit))
	endpoint := w.baseURL + "?" + params.Encode()

	resp, err := w.client.do(ctx, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}
	if resp.status != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.status)
	}
	if len(strings.TrimSpace(string(resp.body))) == 0 {
		return nil, nil
	}

	var rows [][]string
	if err := json.Unmarshal(resp.body, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	var out []model.Finding
	for i, row := range rows {
		// The first row names the columns.
		if i == 0 || len(row) < 2 {
			continue
		}
		timestamp, original := row[0], row[1]
		out = append(out, model.Finding{
			Source: model.SourceWebArchive,
			Title:  "Archived paste on " + domain,
			URL:    fmt.Sprintf(archiveSnapshotURL, timestamp, original),
			Date:   snapshotDate(timestamp),
		})
	}
	return out, nil
}

// archiveFilter turns a free-text query into a CDX regex that matches URLs
// containing every word of the query in order.
func archiveFilter(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return ""
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return ".*" + strings.Join(quoted, ".*") + ".*"
}

// snapshotDate converts a CDX timestamp to YYYY-MM-DD.
func snapshotDate(timestamp string) string {
	if len(timestamp) < 8 {
		return ""
	}
	t, err := time.Parse(cdxTimestampLayout[:8], timestamp[:8])
	if err != nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
