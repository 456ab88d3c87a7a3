package exposure

import (
	"context"
	"strings"
	"sync/atomic"

	"github.com/nao1215/idguard/internal/model"
	"github.com/nao1215/idguard/internal/provider"
)

type fakeBreaches struct {
	result provider.Result[model.Breach]
	calls  atomic.Int32
}

func (f *fakeBreaches) Name() string { return provider.HIBPName }

func (f *fakeBreaches) Breaches(context.Context, string, bool) provider.Result[model.Breach] {
	f.calls.Add(1)
	return f.result
}

type fakeFinder struct {
	name    string
	result  provider.Result[model.Finding]
	panics  bool
	calls   atomic.Int32
	queries chan string
}

func (f *fakeFinder) Name() string { return f.name }

func (f *fakeFinder) Find(_ context.Context, query string) provider.Result[model.Finding] {
	f.calls.Add(1)
	if f.queries != nil {
		f.queries <- query
	}
	if f.panics {
		panic("provider exploded")
	}
	return f.result
}

// fakeSearch answers a site: query with the links registered for its domain.
type fakeSearch struct {
	links map[string][]provider.SearchItem
	fail  bool
	calls atomic.Int32
}

func (f *fakeSearch) Name() string { return provider.SearchName }

func (f *fakeSearch) Search(_ context.Context, query string, _ int) provider.Result[provider.SearchItem] {
	f.calls.Add(1)
	if f.fail {
		return provider.Failure[provider.SearchItem](provider.SearchName, "quota exceeded")
	}
	for domain, items := range f.links {
		if strings.HasPrefix(query, "site:"+domain+" ") {
			return provider.Success(provider.SearchName, items)
		}
	}
	return provider.Success(provider.SearchName, []provider.SearchItem{})
}

func breaches(n int, sensitiveAt int) []model.Breach {
	out := make([]model.Breach, n)
	for i := range out {
		out[i] = model.Breach{
			Name:        "Breach" + string(rune('A'+i)),
			DataClasses: []string{"Email addresses"},
		}
		if i == sensitiveAt {
			out[i].DataClasses = append(out[i].DataClasses, "Passwords")
		}
	}
	return out
}

func findings(source model.Source, n int, excerpt string) []model.Finding {
	out := make([]model.Finding, n)
	for i := range out {
		out[i] = model.Finding{
			Source:    source,
			Title:     "finding",
			Reference: string(source) + string(rune('a'+i)),
			Excerpt:   excerpt,
		}
	}
	return out
}

// dropAll is a validator that removes every finding with a URL.
type dropAll struct{}

func (dropAll) Validate(_ context.Context, r *model.ExposureResult) *model.ExposureResult {
	out := r.Clone()
	keep := out.Pastes[:0]
	for _, f := range out.Pastes {
		if !f.HasURL() {
			keep = append(keep, f)
		}
	}
	out.Pastes = keep
	out.FoundOn = []model.PlatformMention{}
	return out
}
