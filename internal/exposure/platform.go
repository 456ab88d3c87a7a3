package exposure

import (
	"net/url"
	"strings"
)

// Platform is a site where a username may have a public profile.
type Platform struct {
	Name string
	// Domains are the hosts a result link must be on to count. The first
	// one is used in the site: query.
	Domains []string
}

// DefaultPlatforms are searched for every username or name query.
var DefaultPlatforms = []Platform{
	{Name: "github", Domains: []string{"github.com"}},
	{Name: "twitter", Domains: []string{"twitter.com", "x.com"}},
	{Name: "reddit", Domains: []string{"reddit.com"}},
	{Name: "instagram", Domains: []string{"instagram.com"}},
	{Name: "facebook", Domains: []string{"facebook.com"}},
	{Name: "linkedin", Domains: []string{"linkedin.com"}},
	{Name: "youtube", Domains: []string{"youtube.com"}},
	{Name: "pinterest", Domains: []string{"pinterest.com"}},
}

// siteQuery is the search restricted to the platform.
func (p Platform) siteQuery(q string) string {
	return "site:" + p.Domains[0] + ` "` + q + `"`
}

// owns reports whether link points into the platform: its host is one of
// the domains or a subdomain of one.
func (p Platform) owns(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range p.Domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}
