package provider

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/idguard/internal/model"
)

// PasteSearchName is the provider name of the paste search.
const PasteSearchName = "paste-search"

// pasteDork restricts a search to the paste site.
const pasteDork = "site:pastebin.com "

// untitledPaste is the title of a paste hit without one.
const untitledPaste = "Untitled Paste"

// FindingSource is a provider that turns a query into findings. The paste
// search and both leak services implement it.
type FindingSource interface {
	Name() string
	Find(ctx context.Context, query string) Result[model.Finding]
}

// PasteSearch looks for a query on paste sites: the web archive first and a
// search engine dork when the archive has nothing.
type PasteSearch struct {
	archive Archive
	search  Searcher
	domains []string
	now     func() time.Time
	logger  *slog.Logger
}

var _ FindingSource = (*PasteSearch)(nil)

// PasteSearchOption configures a PasteSearch.
type PasteSearchOption func(*PasteSearch)

// WithPasteDomains sets the paste sites searched in the archive.
func WithPasteDomains(domains ...string) PasteSearchOption {
	return func(p *PasteSearch) {
		if len(domains) > 0 {
			p.domains = domains
		}
	}
}

// WithPasteClock sets the clock used to date search engine hits.
func WithPasteClock(now func() time.Time) PasteSearchOption {
	return func(p *PasteSearch) {
		if now != nil {
			p.now = now
		}
	}
}

// WithPasteLogger sets the logger.
func WithPasteLogger(l *slog.Logger) PasteSearchOption {
	return func(p *PasteSearch) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPasteSearch returns a PasteSearch. Either collaborator may be nil.
func NewPasteSearch(archive Archive, search Searcher, opts ...PasteSearchOption) *PasteSearch {
	p := &PasteSearch{
		archive: archive,
		search:  search,
		domains: DefaultPasteDomains,
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns PasteSearchName.
func (p *PasteSearch) Name() string { return PasteSearchName }

// Find returns paste findings for query. Findings are returned with
// ContainsSensitive unset; the caller decides what counts as sensitive.
func (p *PasteSearch) Find(ctx context.Context, query string) Result[model.Finding] {
	var archiveFailure string
	if p.archive != nil {
		res := p.archive.Snapshots(ctx, query, p.domains)
		if res.OK() && len(res.Items) > 0 {
			return Success(PasteSearchName, res.Items)
		}
		if !res.OK() {
			archiveFailure = res.Reason
			p.logger.Debug("archive search failed, falling back to search engine", "reason", res.Reason)
		}
	}

	if p.search == nil {
		if archiveFailure != "" {
			return Failure[model.Finding](PasteSearchName, archiveFailure)
		}
		return Success(PasteSearchName, []model.Finding{})
	}

	res := p.search.Search(ctx, pasteDork+query, MaxSearchResults)
	if !res.OK() {
		if archiveFailure == "" && p.archive != nil {
			// The archive answered with nothing; that answer stands.
			return Success(PasteSearchName, []model.Finding{})
		}
		return Failure[model.Finding](PasteSearchName, res.Reason)
	}

	today := p.now().Format(time.DateOnly)
	findings := make([]model.Finding, 0, len(res.Items))
	for _, item := range res.Items {
		if !strings.Contains(item.Link, "pastebin.com") {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = untitledPaste
		}
		findings = append(findings, model.Finding{
			Source:  model.SourcePasteSearch,
			Title:   title,
			URL:     item.Link,
			Excerpt: item.Snippet,
			Date:    today,
		})
	}
	return Success(PasteSearchName, findings)
}
