package model

import (
	"slices"
	"strings"
)

// Source identifies the kind of external data source a Finding came from.
type Source string

const (
	// SourceBreachDB is the breach-database provider (HaveIBeenPwned).
	SourceBreachDB Source = "breach-db"
	// SourcePasteSearch is a paste site hit found through a search-engine dork.
	SourcePasteSearch Source = "paste-search"
	// SourceWebArchive is an archived snapshot of a paste site page.
	SourceWebArchive Source = "web-archive"
	// SourceLeakServiceA is the dark-web search engine.
	SourceLeakServiceA Source = "leak-service-A"
	// SourceLeakServiceB is the asynchronous leak index.
	SourceLeakServiceB Source = "leak-service-B"
	// SourceSearchMention is a public platform profile found by the search engine.
	SourceSearchMention Source = "search-mention"
)

// Finding is one normalized piece of evidence that a query term appeared
// in an external data source.
//
// URL is empty for sources that only hand out opaque identifiers (the leak
// services); those carry the identifier in Reference instead. Findings are
// values: code that needs a different flag builds a new Finding.
type Finding struct {
	Source            Source `json:"source"`
	Title             string `json:"title"`
	URL               string `json:"url,omitempty"`
	Reference         string `json:"reference,omitempty"`
	Excerpt           string `json:"excerpt,omitempty"`
	Date              string `json:"date,omitempty"`
	ContainsSensitive bool   `json:"contains_sensitive"`
}

// HasURL reports whether the finding points at something that can be probed.
func (f Finding) HasURL() bool {
	return strings.TrimSpace(f.URL) != ""
}

// Key returns the value used to detect duplicate findings.
func (f Finding) Key() string {
	if f.HasURL() {
		return strings.TrimSpace(f.URL)
	}
	return string(f.Source) + ":" + f.Reference + ":" + f.Title
}

// WithSensitive returns a copy of f with ContainsSensitive set to sensitive.
func (f Finding) WithSensitive(sensitive bool) Finding {
	f.ContainsSensitive = sensitive
	return f
}

// SensitiveDataClasses are the breach data classes that force a high risk level
// regardless of how many breaches were found.
var SensitiveDataClasses = []string{
	"Passwords",
	"Credit Cards",
	"Social Security Numbers",
	"Banking",
}

// Breach is a Finding specific to a known historical data breach.
type Breach struct {
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Domain       string   `json:"domain,omitempty"`
	BreachDate   string   `json:"breach_date,omitempty"`
	AddedDate    string   `json:"added_date,omitempty"`
	PwnCount     int64    `json:"pwn_count"`
	Description  string   `json:"description,omitempty"`
	DataClasses  []string `json:"data_classes"`
	IsVerified   bool     `json:"is_verified"`
	IsFabricated bool     `json:"is_fabricated"`
	IsSensitive  bool     `json:"is_sensitive"`
}

// ExposesSensitiveData reports whether any of the breach's data classes
// is in SensitiveDataClasses.
func (b Breach) ExposesSensitiveData() bool {
	for _, class := range b.DataClasses {
		if slices.Contains(SensitiveDataClasses, class) {
			return true
		}
	}
	return false
}

// DisplayName returns the title when set, otherwise the breach name.
func (b Breach) DisplayName() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Name
}

// Finding returns the breach as a generic Finding.
func (b Breach) Finding() Finding {
	return Finding{
		Source:            SourceBreachDB,
		Title:             b.DisplayName(),
		Reference:         b.Name,
		Excerpt:           strings.Join(b.DataClasses, ", "),
		Date:              b.BreachDate,
		ContainsSensitive: b.ExposesSensitiveData(),
	}
}

// PlatformMention is a public profile or page on a well-known platform that
// matched a username or name query. Confirmed is always false when produced
// by a search: only manual or API verification can confirm a match.
type PlatformMention struct {
	Platform  string `json:"platform"`
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	Confirmed bool   `json:"confirmed"`
	Note      string `json:"note,omitempty"`
}

// UnconfirmedMentionNote is attached to every mention produced by a search.
const UnconfirmedMentionNote = "Potential match found, manual verification needed"
